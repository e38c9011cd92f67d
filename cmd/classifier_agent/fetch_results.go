package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/text-classifier/internal/classify"
	"github.com/jonathan/text-classifier/internal/observability"
	"github.com/jonathan/text-classifier/internal/pipeline"
)

var fetchResultsCmd = &cobra.Command{
	Use:   "fetch-results",
	Short: "Download and parse the predictions of a finished inference job",
	Long: `Download the result archive of a completed batch classification job, extract
it under the work directory, and print the parsed predictions.`,
	RunE: runFetchResults,
}

var (
	fetchJobID    string
	fetchWorkDir  string
	fetchRegion   string
	fetchEndpoint string
)

func init() {
	fetchResultsCmd.Flags().StringVar(&fetchJobID, "job-id", "", "ID of the completed inference job (required)")
	fetchResultsCmd.Flags().StringVar(&fetchWorkDir, "work-dir", ".", "Directory for the downloaded archive and extracted results")
	fetchResultsCmd.Flags().StringVar(&fetchRegion, "region", "", "AWS region (defaults to AWS_REGION env var)")
	fetchResultsCmd.Flags().StringVar(&fetchEndpoint, "endpoint", "", "Custom S3 endpoint URL, e.g. for MinIO")

	_ = fetchResultsCmd.MarkFlagRequired("job-id")

	rootCmd.AddCommand(fetchResultsCmd)
}

func runFetchResults(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	store, err := newStorageClient(ctx, fetchRegion, fetchEndpoint)
	if err != nil {
		return err
	}
	jobs, err := newClassifyClient(ctx, fetchRegion)
	if err != nil {
		return err
	}

	handle := classify.JobHandle{ID: fetchJobID, SubmitTime: time.Now()}
	preds, err := pipeline.FetchResults(ctx, store, jobs, handle, fetchWorkDir)
	if err != nil {
		return fmt.Errorf("failed to fetch results: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintPredictions(preds)
	_, _ = fmt.Fprintf(os.Stdout, "Fetched %d predictions\n", len(preds))

	return nil
}
