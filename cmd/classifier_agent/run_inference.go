package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/text-classifier/internal/classify"
	"github.com/jonathan/text-classifier/internal/observability"
	"github.com/jonathan/text-classifier/internal/watch"
)

var runInferenceCmd = &cobra.Command{
	Use:   "run-inference",
	Short: "Start a batch classification job against a trained classifier",
	Long: `Start an asynchronous batch classification job that classifies every document
in the input dataset with a trained classifier. With --wait, polls the job status
at a fixed interval until it reaches a terminal state or the timeout expires.`,
	RunE: runRunInference,
}

var (
	inferClassifierARN string
	inferInputURI      string
	inferOutputURI     string
	inferRoleARN       string
	inferJobName       string
	inferRegion        string
	inferWait          bool
	inferPollInterval  int
	inferTimeout       int
)

func init() {
	runInferenceCmd.Flags().StringVar(&inferClassifierARN, "classifier-arn", "", "ARN of the trained classifier (required)")
	runInferenceCmd.Flags().StringVar(&inferInputURI, "input-uri", "", "S3 URI of the unlabeled dataset, one document per line (required)")
	runInferenceCmd.Flags().StringVar(&inferOutputURI, "output-uri", "", "S3 URI prefix where the service writes results (required)")
	runInferenceCmd.Flags().StringVar(&inferRoleARN, "role-arn", "", "Data access role ARN the service assumes (required)")
	runInferenceCmd.Flags().StringVar(&inferJobName, "job-name", "", "Job name (generated by the service if omitted)")
	runInferenceCmd.Flags().StringVar(&inferRegion, "region", "", "AWS region (defaults to AWS_REGION env var)")
	runInferenceCmd.Flags().BoolVarP(&inferWait, "wait", "w", false, "Block until the job reaches a terminal state")
	runInferenceCmd.Flags().IntVar(&inferPollInterval, "poll-interval", 60, "Seconds between status probes when waiting")
	runInferenceCmd.Flags().IntVar(&inferTimeout, "timeout", 120, "Minutes to wait before giving up")

	_ = runInferenceCmd.MarkFlagRequired("classifier-arn")
	_ = runInferenceCmd.MarkFlagRequired("input-uri")
	_ = runInferenceCmd.MarkFlagRequired("output-uri")
	_ = runInferenceCmd.MarkFlagRequired("role-arn")

	rootCmd.AddCommand(runInferenceCmd)
}

func runRunInference(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	client, err := newClassifyClient(ctx, inferRegion)
	if err != nil {
		return err
	}

	handle, err := classify.StartInferenceJob(ctx, client, classify.InferenceInput{
		JobName:       inferJobName,
		ClassifierARN: inferClassifierARN,
		InputURI:      inferInputURI,
		OutputURI:     inferOutputURI,
		RoleARN:       inferRoleARN,
	})
	if err != nil {
		return fmt.Errorf("failed to start inference job: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Submitted inference job: %s\n", handle.ID)

	if !inferWait {
		return nil
	}

	printer := observability.NewPrinter(os.Stdout)
	timeout := time.Duration(inferTimeout) * time.Minute
	obs, err := watch.WaitForTerminal(ctx, &classify.JobProbe{API: client, Handle: handle}, watch.Options{
		Interval: time.Duration(inferPollInterval) * time.Second,
		Deadline: time.Now().Add(timeout),
		OnPoll: func(obs watch.Observation, elapsed time.Duration) {
			printer.PrintObservation("inference", obs, elapsed)
		},
	})
	if err != nil {
		return fmt.Errorf("watching inference job failed: %w", err)
	}
	if !obs.Terminal {
		return fmt.Errorf("inference job did not reach a terminal state within %s (last status %s)", timeout, obs.Status)
	}
	if obs.Failed {
		return fmt.Errorf("inference job failed with status %s: %s", obs.Status, obs.Message)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Inference job finished with status %s\n", obs.Status)

	return nil
}
