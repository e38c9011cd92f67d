package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a pipeline run record
type Run struct {
	ID             uuid.UUID  `json:"id"`
	ClassifierName string     `json:"classifier_name"`
	Dataset        string     `json:"dataset"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// ArtifactStep constants for known artifact types
const (
	StepLabelIndex     = "label_index"
	StepTrainDataset   = "train_dataset"
	StepTestDataset    = "test_dataset"
	StepUpload         = "upload"
	StepClassifier     = "classifier"
	StepTrainingStatus = "training_status"
	StepInferenceJob   = "inference_job"
	StepJobStatus      = "job_status"
	StepPredictions    = "predictions"
)

// Artifact categories, grouping steps by pipeline phase
const (
	CategoryDataset   = "dataset"
	CategoryStorage   = "storage"
	CategoryTraining  = "training"
	CategoryInference = "inference"
	CategoryResults   = "results"
)
