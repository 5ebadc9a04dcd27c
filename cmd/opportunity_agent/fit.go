package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/opportunity-tracker/internal/assessment"
	"github.com/jonathan/opportunity-tracker/internal/db"
	"github.com/jonathan/opportunity-tracker/internal/llm"
	"github.com/jonathan/opportunity-tracker/internal/observability"
)

var (
	fitID          int64
	fitDatabaseURL string
	fitAPIKey      string
	fitVerbose     bool
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Score an opportunity against the stored profile",
	Long:  "Generate a scored fit assessment for an opportunity against the current profile. Regenerating replaces the previous score for that opportunity.",
	RunE:  runFit,
}

func init() {
	fitCmd.Flags().Int64Var(&fitID, "id", 0, "Opportunity ID (required)")
	fitCmd.Flags().StringVar(&fitDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")
	fitCmd.Flags().StringVar(&fitAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	fitCmd.Flags().BoolVarP(&fitVerbose, "verbose", "v", false, "Enable debug logging")
	_ = fitCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(fitCmd)
}

func runFit(_ *cobra.Command, _ []string) error {
	apiKey := resolveAPIKey(fitAPIKey)
	if apiKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	databaseURL := fitDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer func() { _ = client.Close() }()

	logger, err := newLogger(fitVerbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	scorer := assessment.NewScorer(database, client, logger)

	ja, err := scorer.Assess(ctx, fitID)
	if err != nil {
		return fmt.Errorf("failed to score opportunity: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintFit(ja)
	return nil
}
