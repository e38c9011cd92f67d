package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/text-classifier/internal/dataset"
	"github.com/jonathan/text-classifier/internal/labels"
)

var prepareDatasetCmd = &cobra.Command{
	Use:   "prepare-dataset",
	Short: "Transform a raw CSV dataset for training or inference",
	Long: `Transform a raw dataset CSV into the format the classification service expects.

In labeled mode each record's numeric label index is replaced by its class name
from the labels file. In unlabeled mode the label and title columns are dropped,
leaving one document body per line.`,
	RunE: runPrepareDataset,
}

var (
	prepareLabelsFile  string
	prepareInputFile   string
	prepareOutputFile  string
	prepareMode        string
	prepareSampleLimit int
)

func init() {
	prepareDatasetCmd.Flags().StringVarP(&prepareLabelsFile, "labels", "l", "", "Path to labels file, one class name per line (required)")
	prepareDatasetCmd.Flags().StringVarP(&prepareInputFile, "in", "i", "", "Path to raw dataset CSV (required)")
	prepareDatasetCmd.Flags().StringVarP(&prepareOutputFile, "out", "o", "", "Path for the transformed CSV (required)")
	prepareDatasetCmd.Flags().StringVarP(&prepareMode, "mode", "m", "labeled", "Transform mode: labeled or unlabeled")
	prepareDatasetCmd.Flags().IntVar(&prepareSampleLimit, "sample-limit", 0, "Process at most this many records (0 = all)")

	_ = prepareDatasetCmd.MarkFlagRequired("labels")
	_ = prepareDatasetCmd.MarkFlagRequired("in")
	_ = prepareDatasetCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(prepareDatasetCmd)
}

func runPrepareDataset(_ *cobra.Command, _ []string) error {
	mode, err := dataset.ParseMode(prepareMode)
	if err != nil {
		return err
	}

	idx, err := labels.Load(prepareLabelsFile)
	if err != nil {
		return fmt.Errorf("failed to load labels: %w", err)
	}

	count, err := dataset.Transform(prepareInputFile, prepareOutputFile, mode, idx, dataset.Options{
		SampleLimit: prepareSampleLimit,
	})
	if err != nil {
		var unknownErr *dataset.UnknownLabelError
		var malformedErr *dataset.MalformedRecordError
		if errors.As(err, &unknownErr) || errors.As(err, &malformedErr) {
			_, _ = fmt.Fprintf(os.Stderr, "Dataset rejected: %v\n", err)
		}
		return fmt.Errorf("transform failed: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Transformed %d records (%s mode)\n", count, mode)
	_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", prepareOutputFile)

	return nil
}
