package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Naveduran/academic-research-utilities/internal/highlight"
)

func init() {
	rootCmd.AddCommand(highlightCmd)
}

var highlightCmd = &cobra.Command{
	Use:   "make-highlightable <input_path> <output_dir>",
	Short: "Produce annotation-ready copies of PDF papers",
	Long: `Copy a PDF file, or every PDF under a directory, into the output
directory as "<name>_highlightable.pdf". Each input is validated as a
parseable PDF first; corrupt or encrypted files are reported and
skipped without aborting the batch.

Examples:
  papers make-highlightable papers/ writable/
  papers make-highlightable paper.pdf writable/`,
	Args: cobra.ExactArgs(2),
	RunE: runHighlight,
}

func runHighlight(cmd *cobra.Command, args []string) error {
	inputPath, outputDir := args[0], args[1]

	res, err := highlight.ProcessTree(inputPath, outputDir, logf)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	fmt.Fprintf(os.Stderr, "Processed %d files into %s (%d failed)\n",
		res.Processed, outputDir, len(res.Failed))
	for _, name := range res.Failed {
		fmt.Fprintf(os.Stderr, "  failed: %s\n", name)
	}
	return nil
}
