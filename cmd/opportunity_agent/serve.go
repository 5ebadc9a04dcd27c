package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/opportunity-tracker/internal/config"
	"github.com/jonathan/opportunity-tracker/internal/server"
)

var (
	servePort      int
	serveConfig    string
	serveVerbose   bool
	serveNoBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for opportunities, assessments, and the profile.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to JSON config file")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Enable debug logging")
	serveCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "Never escalate fetches to a headless browser (requires Chrome otherwise)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(serveConfig)
	if err != nil {
		return err
	}
	// An explicit --port wins over the config file; otherwise the file value
	// is the default.
	if cmd.Flags().Changed("port") || cfg.Port == 0 {
		cfg.Port = servePort
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	logger, err := newLogger(serveVerbose || cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	srv, err := server.New(context.Background(), server.Config{
		Port:           cfg.Port,
		DatabaseURL:    cfg.DatabaseURL,
		APIKey:         cfg.APIKey,
		DisableBrowser: serveNoBrowser || cfg.DisableBrowser,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// resolveConfig loads the optional JSON config file and fills connection
// fields from the environment.
func resolveConfig(path string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
