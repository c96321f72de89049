package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Naveduran/academic-research-utilities/internal/extract"
	"github.com/Naveduran/academic-research-utilities/internal/record"
	"github.com/Naveduran/academic-research-utilities/internal/report"
	"github.com/Naveduran/academic-research-utilities/internal/textnorm"
)

func init() {
	rootCmd.AddCommand(extractReferencesCmd)
}

var extractReferencesCmd = &cobra.Command{
	Use:   "extract-references <input_dir> <output_file>",
	Short: "Extract bibliographic references from converted text files",
	Long: `Extract bibliographic references from every .txt file under a directory.

Each text file is treated as one paper; its DOI, title, authors, year,
webpage, and contact emails are pulled out heuristically. Fields that
cannot be found stay empty - empty records are not an error.

Examples:
  papers extract-references plain_text_files/ references.txt`,
	Args: cobra.ExactArgs(2),
	RunE: runExtractReferences,
}

func runExtractReferences(cmd *cobra.Command, args []string) error {
	inputDir, outputFile := args[0], args[1]

	files, err := readTextFiles(inputDir)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	records := make([]*record.Record, 0, len(files))
	for _, f := range files {
		logf("extracting %s", f.Rel)
		records = append(records, extract.FromText(f.Rel, textnorm.Normalize(f.Content)))
	}

	if err := writeOutput(outputFile, report.Serialize(records)); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	fmt.Fprintf(os.Stderr, "Extracted %d records from %s to %s\n", len(records), inputDir, outputFile)
	return nil
}
