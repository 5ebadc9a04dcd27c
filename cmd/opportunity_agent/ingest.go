package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/opportunity-tracker/internal/db"
	"github.com/jonathan/opportunity-tracker/internal/fetch"
	"github.com/jonathan/opportunity-tracker/internal/llm"
	"github.com/jonathan/opportunity-tracker/internal/observability"
	"github.com/jonathan/opportunity-tracker/internal/parsing"
)

var (
	ingestLink        string
	ingestSave        bool
	ingestDatabaseURL string
	ingestAPIKey      string
	ingestNoBrowser   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Parse a job posting from a link",
	Long:  "Fetch a job posting page, extract the opportunity fields with the model, and print them. With --save the opportunity is persisted to the database.",
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestLink, "link", "", "Job posting URL (required)")
	ingestCmd.Flags().BoolVar(&ingestSave, "save", false, "Persist the parsed opportunity")
	ingestCmd.Flags().StringVar(&ingestDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")
	ingestCmd.Flags().StringVar(&ingestAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	ingestCmd.Flags().BoolVar(&ingestNoBrowser, "no-browser", false, "Never escalate the fetch to a headless browser")
	_ = ingestCmd.MarkFlagRequired("link")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(_ *cobra.Command, _ []string) error {
	apiKey := resolveAPIKey(ingestAPIKey)
	if apiKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	ctx := context.Background()

	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer func() { _ = client.Close() }()

	parsed, err := parsing.ParseOpportunityFromLink(ctx, client, pageFetcher(ingestNoBrowser), ingestLink)
	if err != nil {
		return fmt.Errorf("failed to parse job posting: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintParsed(parsed)

	if !ingestSave {
		return nil
	}

	databaseURL := ingestDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL required with --save")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	opp, err := database.CreateOpportunity(ctx, parsed)
	if err != nil {
		return fmt.Errorf("failed to save opportunity: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Saved opportunity %d\n", opp.ID)
	return nil
}

func resolveAPIKey(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("GEMINI_API_KEY")
}

// pageFetcher returns a direct-only fetcher when the browser tier is
// disabled, or nil for the default two-tier fetcher.
func pageFetcher(noBrowser bool) parsing.FetchFunc {
	if !noBrowser {
		return nil
	}
	opts := fetch.DefaultOptions()
	opts.DirectOnly = true
	return func(ctx context.Context, url string) (*fetch.Result, error) {
		return fetch.Fetch(ctx, url, opts)
	}
}
