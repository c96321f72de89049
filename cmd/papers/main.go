// Package main provides the papers CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// verbose controls per-file progress output on stderr.
var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "papers",
	Short: "Batch processing for academic PDF papers",
	Long: `papers batch-processes academic PDF papers.

Core features:
  - Convert PDFs to plain text
  - Extract bibliographic references and author emails from converted text
  - Enrich references via DOI resolution and web search
  - Produce annotation-ready PDF copies

Extraction is heuristic and best effort: fields that cannot be found are
left empty rather than failing the run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose progress output")
	rootCmd.Version = Version
}

// logf writes progress output to stderr when --verbose is set.
func logf(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// exitWithError writes an error to stderr and exits with the given code.
func exitWithError(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(code)
}
