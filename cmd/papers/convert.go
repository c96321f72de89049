package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Naveduran/academic-research-utilities/internal/pdftext"
)

var convertClean bool

func init() {
	convertCmd.Flags().BoolVar(&convertClean, "clean", false, "Remove the output directory before converting")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert-pdf <input_path> <output_dir>",
	Short: "Convert PDF papers to plain text",
	Long: `Convert a PDF file, or every PDF under a directory, into plain text
files under the output directory. Directory structure is mirrored and
already-converted files are skipped unless --clean is given. Scanned or
image-only PDFs that yield no usable text are reported and skipped.

Examples:
  papers convert-pdf papers/ text/
  papers convert-pdf papers/ text/ --clean
  papers convert-pdf paper.pdf text/`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath, outputDir := args[0], args[1]

	info, err := os.Stat(inputPath)
	if err != nil {
		exitWithError(ExitError, "reading input path %s: %v", inputPath, err)
	}

	if convertClean {
		if err := pdftext.CleanOutputDir(outputDir); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}

	if !info.IsDir() {
		if err := convertOne(inputPath, outputDir); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		fmt.Fprintf(os.Stderr, "Converted 1 file to %s\n", outputDir)
		return nil
	}

	res, err := pdftext.ConvertTree(inputPath, outputDir, logf)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	fmt.Fprintf(os.Stderr, "Converted %d files to %s (%d skipped, %d failed)\n",
		res.Converted, outputDir, res.Skipped, len(res.Failed))
	for _, name := range res.Failed {
		fmt.Fprintf(os.Stderr, "  failed: %s\n", name)
	}
	return nil
}

// convertOne handles a single PDF given directly on the command line.
func convertOne(inputPath, outputDir string) error {
	if !strings.EqualFold(filepath.Ext(inputPath), ".pdf") {
		return fmt.Errorf("input file is not a PDF: %s", inputPath)
	}
	text, err := pdftext.ExtractFile(inputPath)
	if err != nil {
		return fmt.Errorf("converting %s: %w", inputPath, err)
	}
	base := filepath.Base(inputPath)
	outPath := filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base))+".txt")
	return writeOutput(outPath, text+"\n")
}
