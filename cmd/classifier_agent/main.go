// Package main provides the entry point for the text classifier pipeline CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "classifier_agent",
	Short: "Text Classification Pipeline CLI",
	Long:  "classifier_agent prepares labeled text datasets, uploads them to object storage, trains a managed document classifier, runs batch inference against it, and fetches the predictions.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
