package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Naveduran/academic-research-utilities/internal/cache"
	"github.com/Naveduran/academic-research-utilities/internal/config"
	"github.com/Naveduran/academic-research-utilities/internal/enrich"
	"github.com/Naveduran/academic-research-utilities/internal/lookup"
	"github.com/Naveduran/academic-research-utilities/internal/report"
)

var (
	enrichAPIKey    string
	enrichCSEID     string
	enrichDelay     float64
	enrichCachePath string
)

func init() {
	enrichCmd.Flags().StringVar(&enrichAPIKey, "api-key", "", "Google API key (or GOOGLE_API_KEY)")
	enrichCmd.Flags().StringVar(&enrichCSEID, "cse-id", "", "Google Custom Search Engine id (or GOOGLE_CSE_ID)")
	enrichCmd.Flags().Float64Var(&enrichDelay, "delay", 0, "Delay between records in seconds (default from config, 1.0)")
	enrichCmd.Flags().StringVar(&enrichCachePath, "cache", "", "Lookup cache database path (default from config, off)")
	rootCmd.AddCommand(enrichCmd)
}

var enrichCmd = &cobra.Command{
	Use:   "enrich-metadata <input_file> <output_file>",
	Short: "Enrich extracted references via DOI resolution and web search",
	Long: `Enrich references produced by extract-references. Each record is
resolved DOI-first against doi.org; records without a usable DOI fall
back to a Google Custom Search query built from the title and first
author. Lookups are rate limited and failures degrade single records,
never the whole run. A statistics summary is appended to the output.

Credentials come from --api-key/--cse-id, or from GOOGLE_API_KEY and
GOOGLE_CSE_ID (a .env file in the working directory is honored).

Examples:
  papers enrich-metadata references.txt enriched.txt --api-key K --cse-id C
  papers enrich-metadata references.txt enriched.txt --delay 2.0 --cache lookups.db`,
	Args: cobra.ExactArgs(2),
	RunE: runEnrich,
}

func runEnrich(cmd *cobra.Command, args []string) error {
	inputFile, outputFile := args[0], args[1]

	// Pick up GOOGLE_API_KEY / GOOGLE_CSE_ID from a local .env if present.
	_ = godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	apiKey := enrichAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	cseID := enrichCSEID
	if cseID == "" {
		cseID = os.Getenv("GOOGLE_CSE_ID")
	}
	if apiKey == "" || cseID == "" {
		exitWithError(ExitConfigError, "missing credentials: set --api-key and --cse-id (or GOOGLE_API_KEY and GOOGLE_CSE_ID)")
	}

	delay := cfg.Delay()
	if cmd.Flags().Changed("delay") {
		if enrichDelay < 0 {
			exitWithError(ExitConfigError, "--delay must be non-negative")
		}
		delay = time.Duration(enrichDelay * float64(time.Second))
	}

	cachePath := cfg.CachePath
	if enrichCachePath != "" {
		cachePath = enrichCachePath
	}

	// Parse the whole input up front: a malformed file is fatal before
	// any network traffic or output.
	data, err := os.ReadFile(inputFile)
	if err != nil {
		exitWithError(ExitError, "reading input file %s: %v", inputFile, err)
	}
	records, err := report.Parse(string(data))
	if err != nil {
		exitWithError(ExitDataError, "parsing %s: %v", inputFile, err)
	}
	if len(records) == 0 {
		exitWithError(ExitDataError, "no records found in %s", inputFile)
	}

	client := lookup.NewClient(
		lookup.WithCredentials(apiKey, cseID),
		lookup.WithMinInterval(cfg.MinInterval()),
		lookup.WithUserAgent(cfg.UserAgent),
		lookup.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
	)

	pipeline := &enrich.Pipeline{Client: client}
	if cachePath != "" {
		store, err := cache.Open(cachePath)
		if err != nil {
			exitWithError(ExitError, "opening lookup cache: %v", err)
		}
		defer store.Close()
		pipeline.Cache = store
	}
	if verbose {
		pipeline.Log = os.Stderr
	} else {
		pipeline.Log = io.Discard
	}

	// Interrupt cancels between records; whatever was enriched so far is
	// still written out.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, runErr := pipeline.Enrich(ctx, records, delay)

	out := report.Serialize(records) + "\n" + report.FormatStats(stats)
	if err := writeOutput(outputFile, out); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			exitWithError(ExitError, "interrupted; partial results written to %s", outputFile)
		}
		exitWithError(ExitError, "enrichment aborted: %v", runErr)
	}

	fmt.Fprintf(os.Stderr, "Enriched %d/%d records (%d failed), results in %s\n",
		stats.Enriched, stats.Total, stats.Failed, outputFile)
	return nil
}
