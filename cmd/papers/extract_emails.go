package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Naveduran/academic-research-utilities/internal/emaildir"
	"github.com/Naveduran/academic-research-utilities/internal/extract"
	"github.com/Naveduran/academic-research-utilities/internal/textnorm"
)

func init() {
	rootCmd.AddCommand(extractEmailsCmd)
}

var extractEmailsCmd = &cobra.Command{
	Use:   "extract-emails <input_dir> <output_file>",
	Short: "Extract author emails from converted text files",
	Long: `Collect every email address found in the .txt files under a directory
into one consolidated listing: one line per address with the files it
appeared in. Addresses are lower-cased and deduplicated.

Examples:
  papers extract-emails plain_text_files/ emails.txt`,
	Args: cobra.ExactArgs(2),
	RunE: runExtractEmails,
}

func runExtractEmails(cmd *cobra.Command, args []string) error {
	inputDir, outputFile := args[0], args[1]

	files, err := readTextFiles(inputDir)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	dir := emaildir.New()
	for _, f := range files {
		r := extract.FromText(f.Rel, textnorm.Normalize(f.Content))
		for _, email := range r.Emails {
			dir.Add(email, f.Rel)
		}
	}

	if err := writeOutput(outputFile, dir.Format()); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	fmt.Fprintf(os.Stderr, "Found %d unique emails across %d files\n", dir.Len(), len(files))
	return nil
}
