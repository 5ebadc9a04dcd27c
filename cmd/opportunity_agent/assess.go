package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/opportunity-tracker/internal/assessment"
	"github.com/jonathan/opportunity-tracker/internal/db"
	"github.com/jonathan/opportunity-tracker/internal/llm"
	"github.com/jonathan/opportunity-tracker/internal/observability"
	"github.com/jonathan/opportunity-tracker/internal/types"
)

var (
	assessID          int64
	assessKind        string
	assessTimeout     time.Duration
	assessDatabaseURL string
	assessAPIKey      string
	assessVerbose     bool
)

// assessPollInterval is how often the command re-reads the assessment row
// while waiting for the background generation to finish.
const assessPollInterval = 2 * time.Second

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Generate an assessment for a stored opportunity",
	Long:  "Request an assessment for an opportunity and wait for the generation to finish. A previously succeeded assessment is printed as-is; a failed one is retried.",
	RunE:  runAssess,
}

func init() {
	assessCmd.Flags().Int64Var(&assessID, "id", 0, "Opportunity ID (required)")
	assessCmd.Flags().StringVar(&assessKind, "kind", types.AssessmentKindInitial, "Assessment kind")
	assessCmd.Flags().DurationVar(&assessTimeout, "timeout", assessment.GenerationTimeout, "How long to wait for generation")
	assessCmd.Flags().StringVar(&assessDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")
	assessCmd.Flags().StringVar(&assessAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	assessCmd.Flags().BoolVarP(&assessVerbose, "verbose", "v", false, "Enable debug logging")
	_ = assessCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(assessCmd)
}

func runAssess(_ *cobra.Command, _ []string) error {
	apiKey := resolveAPIKey(assessAPIKey)
	if apiKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	databaseURL := assessDatabaseURL
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

	logger, err := newLogger(assessVerbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	controller := assessment.NewController(database, client, logger)

	a, err := controller.Request(ctx, assessID, assessKind)
	if err != nil {
		return fmt.Errorf("failed to request assessment: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)

	if !a.Terminal() {
		a, err = waitForAssessment(ctx, controller, assessID, assessKind)
		if err != nil {
			return err
		}
	}

	printer.PrintAssessment(a)

	if a.Status == types.AssessmentFailed {
		return fmt.Errorf("assessment generation failed")
	}
	return nil
}

func waitForAssessment(ctx context.Context, controller *assessment.Controller, id int64, kind string) (*types.Assessment, error) {
	deadline := time.Now().Add(assessTimeout)
	for {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timed out waiting for assessment after %s", assessTimeout)
		}
		time.Sleep(assessPollInterval)

		a, err := controller.Find(ctx, id, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to read assessment: %w", err)
		}
		if a != nil && a.Terminal() {
			return a, nil
		}
	}
}
