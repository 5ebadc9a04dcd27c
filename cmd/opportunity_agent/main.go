// Package main provides the entry point for the Opportunity Tracker.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "opportunity_agent",
	Short: "Opportunity Tracker HTTP API Server",
	Long:  "Opportunity Tracker ingests job postings, generates model-backed fit assessments against a stored profile, and tracks opportunities through the application workflow via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
