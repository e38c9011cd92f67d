package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifactStepConstants(t *testing.T) {
	// Verify step constants are defined
	steps := []string{
		StepLabelIndex,
		StepTrainDataset,
		StepTestDataset,
		StepUpload,
		StepClassifier,
		StepTrainingStatus,
		StepInferenceJob,
		StepJobStatus,
		StepPredictions,
	}

	seen := make(map[string]bool)
	for _, step := range steps {
		assert.NotEmpty(t, step, "step constant should not be empty")
		assert.False(t, seen[step], "step constant %q duplicated", step)
		seen[step] = true
	}
}

func TestRunType(t *testing.T) {
	// Verify Run struct can be instantiated
	run := Run{
		ClassifierName: "news-classifier",
		Dataset:        "dbpedia",
		Status:         "running",
	}

	assert.Equal(t, "news-classifier", run.ClassifierName)
	assert.Equal(t, "dbpedia", run.Dataset)
	assert.Equal(t, "running", run.Status)
	assert.Nil(t, run.CompletedAt)
}
