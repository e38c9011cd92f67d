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

var trainClassifierCmd = &cobra.Command{
	Use:   "train-classifier",
	Short: "Create a custom document classifier from an uploaded dataset",
	Long: `Submit a custom document classifier for training against a labeled dataset
already uploaded to the object store. With --wait, polls the training status at a
fixed interval until it reaches a terminal state or the timeout expires.`,
	RunE: runTrainClassifier,
}

var (
	trainDataURI      string
	trainRoleARN      string
	trainName         string
	trainLanguage     string
	trainRegion       string
	trainWait         bool
	trainPollInterval int
	trainTimeout      int
)

func init() {
	trainClassifierCmd.Flags().StringVar(&trainDataURI, "training-uri", "", "S3 URI of the transformed training dataset (required)")
	trainClassifierCmd.Flags().StringVar(&trainRoleARN, "role-arn", "", "Data access role ARN the service assumes (required)")
	trainClassifierCmd.Flags().StringVarP(&trainName, "name", "n", "", "Classifier name (generated if omitted)")
	trainClassifierCmd.Flags().StringVar(&trainLanguage, "language", "en", "Two-letter language code of the documents")
	trainClassifierCmd.Flags().StringVar(&trainRegion, "region", "", "AWS region (defaults to AWS_REGION env var)")
	trainClassifierCmd.Flags().BoolVarP(&trainWait, "wait", "w", false, "Block until training reaches a terminal state")
	trainClassifierCmd.Flags().IntVar(&trainPollInterval, "poll-interval", 60, "Seconds between status probes when waiting")
	trainClassifierCmd.Flags().IntVar(&trainTimeout, "timeout", 120, "Minutes to wait before giving up")

	_ = trainClassifierCmd.MarkFlagRequired("training-uri")
	_ = trainClassifierCmd.MarkFlagRequired("role-arn")

	rootCmd.AddCommand(trainClassifierCmd)
}

func runTrainClassifier(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	client, err := newClassifyClient(ctx, trainRegion)
	if err != nil {
		return err
	}

	handle, err := classify.TrainClassifier(ctx, client, classify.TrainInput{
		Name:        trainName,
		TrainingURI: trainDataURI,
		RoleARN:     trainRoleARN,
		Language:    trainLanguage,
	})
	if err != nil {
		return fmt.Errorf("failed to create classifier: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Submitted classifier: %s\n", handle.ID)

	if !trainWait {
		return nil
	}

	printer := observability.NewPrinter(os.Stdout)
	timeout := time.Duration(trainTimeout) * time.Minute
	obs, err := watch.WaitForTerminal(ctx, &classify.ClassifierProbe{API: client, Handle: handle}, watch.Options{
		Interval: time.Duration(trainPollInterval) * time.Second,
		Deadline: time.Now().Add(timeout),
		OnPoll: func(obs watch.Observation, elapsed time.Duration) {
			printer.PrintObservation("training", obs, elapsed)
		},
	})
	if err != nil {
		return fmt.Errorf("watching training failed: %w", err)
	}
	if !obs.Terminal {
		return fmt.Errorf("training did not reach a terminal state within %s (last status %s)", timeout, obs.Status)
	}
	if obs.Failed {
		return fmt.Errorf("training failed with status %s: %s", obs.Status, obs.Message)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Training finished with status %s\n", obs.Status)

	return nil
}
