package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/opportunity-tracker/internal/db"
	"github.com/jonathan/opportunity-tracker/internal/llm"
	"github.com/jonathan/opportunity-tracker/internal/observability"
	"github.com/jonathan/opportunity-tracker/internal/profile"
)

var (
	genLinks       []string
	genFiles       []string
	genDescription string
	genDatabaseURL string
	genAPIKey      string
	genVerbose     bool
	genNoBrowser   bool
)

var generateProfileCmd = &cobra.Command{
	Use:   "generate-profile",
	Short: "Rebuild the profile from links, files, and a description",
	Long:  "Collect content from the given links, local files, and free-text description, extract profile entries with the model, and atomically replace the stored profile. A generation that produces no entries leaves the profile untouched.",
	RunE:  runGenerateProfile,
}

func init() {
	generateProfileCmd.Flags().StringArrayVar(&genLinks, "link", nil, "Source URL (repeatable)")
	generateProfileCmd.Flags().StringArrayVar(&genFiles, "file", nil, "Local .txt or .pdf file (repeatable)")
	generateProfileCmd.Flags().StringVar(&genDescription, "description", "", "Free-text background description")
	generateProfileCmd.Flags().StringVar(&genDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")
	generateProfileCmd.Flags().StringVar(&genAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	generateProfileCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Enable debug logging")
	generateProfileCmd.Flags().BoolVar(&genNoBrowser, "no-browser", false, "Never escalate link fetches to a headless browser")
	rootCmd.AddCommand(generateProfileCmd)
}

func runGenerateProfile(_ *cobra.Command, _ []string) error {
	if len(genLinks) == 0 && len(genFiles) == 0 && genDescription == "" {
		return fmt.Errorf("at least one --link, --file, or --description is required")
	}

	apiKey := resolveAPIKey(genAPIKey)
	if apiKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	databaseURL := genDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	var files []profile.FileInput
	for _, path := range genFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", path, err)
		}
		files = append(files, profile.FileInput{Name: filepath.Base(path), Data: data})
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

	logger, err := newLogger(genVerbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	sources := profile.CollectSources(ctx, profile.FetchFunc(pageFetcher(genNoBrowser)), logger, genLinks, files, genDescription)
	if len(sources) == 0 {
		return fmt.Errorf("no readable content collected from the provided sources")
	}

	outcome, err := profile.Regenerate(ctx, client, database, logger, sources)
	if err != nil {
		return fmt.Errorf("failed to regenerate profile: %w", err)
	}

	if outcome.Message != "" {
		fmt.Fprintln(os.Stdout, outcome.Message)
	}

	p, err := database.GetOrCreateDefaultProfile(ctx)
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}
	observability.NewPrinter(os.Stdout).PrintProfileEntries(p.Entries, p.Version)
	return nil
}
