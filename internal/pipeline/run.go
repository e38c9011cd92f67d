// Package pipeline provides the high-level orchestration for the dataset
// preparation and classification process.
package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/text-classifier/internal/classify"
	"github.com/jonathan/text-classifier/internal/dataset"
	"github.com/jonathan/text-classifier/internal/db"
	"github.com/jonathan/text-classifier/internal/labels"
	"github.com/jonathan/text-classifier/internal/observability"
	"github.com/jonathan/text-classifier/internal/predictions"
	"github.com/jonathan/text-classifier/internal/storage"
	"github.com/jonathan/text-classifier/internal/watch"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// StoreAPI is the slice of the object-store client the pipeline needs.
type StoreAPI interface {
	storage.PutAPI
	storage.GetAPI
}

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	LabelsPath string
	TrainPath  string
	TestPath   string
	WorkDir    string // transformed datasets and fetched results land here

	Bucket string
	Prefix string

	RoleARN        string
	ClassifierName string
	JobName        string
	Language       string

	PollInterval time.Duration
	Timeout      time.Duration // wall-clock budget for each watch loop
	SampleLimit  int

	Verbose     bool
	DatabaseURL string

	Store      StoreAPI
	Classifier classify.ClassifierAPI
	Jobs       classify.JobAPI

	OnProgress ProgressCallback
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			Content:  content,
		})
	}
}

// RunPipeline orchestrates the full classification pipeline: transform the
// raw datasets, upload them, train a classifier, run batch inference against
// it, and fetch the predictions. Execution is strictly sequential; each
// remote phase blocks on a fixed-interval watch loop.
func RunPipeline(ctx context.Context, opts RunOptions) error {

	// Initialize observability printer for verbose output
	printer := observability.NewPrinter(os.Stdout)

	// Initialize database connection if configured
	var database *db.DB
	var runID uuid.UUID
	if opts.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
			database = nil
		} else {
			defer database.Close()
			if opts.Verbose {
				fmt.Printf("[VERBOSE] Connected to database\n")
			}
		}
	}

	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if err := os.MkdirAll(opts.WorkDir, 0755); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}

	// Step 1: Load the label index
	fmt.Printf("Step 1/9: Loading label index from %s...\n", opts.LabelsPath)
	idx, err := labels.Load(opts.LabelsPath)
	if err != nil {
		return fmt.Errorf("loading labels failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintLabelIndex(idx)
	}
	emitProgress(&opts, db.StepLabelIndex, db.CategoryDataset,
		fmt.Sprintf("Loaded %d class names", idx.Len()), idx.Names())

	// Save to database if connected
	if database != nil {
		runID, err = database.CreateRun(ctx, opts.ClassifierName, opts.TrainPath)
		if err != nil {
			fmt.Printf("Warning: Failed to create database run: %v\n", err)
		} else {
			if opts.Verbose {
				fmt.Printf("[VERBOSE] Created database run: %s\n", runID)
			}
			_ = database.SaveArtifact(ctx, runID, db.StepLabelIndex, db.CategoryDataset, idx.Names())
		}
	}

	// Step 2: Transform the training dataset (label indices become names)
	trainOut := filepath.Join(opts.WorkDir, "train.transformed.csv")
	fmt.Printf("Step 2/9: Transforming training dataset %s...\n", opts.TrainPath)
	trainCount, err := dataset.Transform(opts.TrainPath, trainOut, dataset.Labeled, idx, dataset.Options{SampleLimit: opts.SampleLimit})
	if err != nil {
		return fmt.Errorf("transforming training dataset failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintTransformSummary(dataset.Labeled.String(), trainCount, trainOut)
	}
	emitProgress(&opts, db.StepTrainDataset, db.CategoryDataset,
		fmt.Sprintf("Transformed %d training records", trainCount), nil)
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepTrainDataset, db.CategoryDataset,
			map[string]any{"records": trainCount, "path": trainOut})
	}

	// Step 3: Transform the test dataset (labels stripped for inference)
	testOut := filepath.Join(opts.WorkDir, "test.transformed.csv")
	fmt.Printf("Step 3/9: Transforming test dataset %s...\n", opts.TestPath)
	testCount, err := dataset.Transform(opts.TestPath, testOut, dataset.Unlabeled, idx, dataset.Options{SampleLimit: opts.SampleLimit})
	if err != nil {
		return fmt.Errorf("transforming test dataset failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintTransformSummary(dataset.Unlabeled.String(), testCount, testOut)
	}
	emitProgress(&opts, db.StepTestDataset, db.CategoryDataset,
		fmt.Sprintf("Transformed %d test records", testCount), nil)
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepTestDataset, db.CategoryDataset,
			map[string]any{"records": testCount, "path": testOut})
	}

	// Step 4: Upload both datasets to the object store
	trainKey := path.Join(opts.Prefix, "train", filepath.Base(trainOut))
	testKey := path.Join(opts.Prefix, "test", filepath.Base(testOut))
	fmt.Printf("Step 4/9: Uploading datasets to s3://%s/%s...\n", opts.Bucket, opts.Prefix)
	if err := storage.UploadFile(ctx, opts.Store, opts.Bucket, trainKey, trainOut); err != nil {
		return fmt.Errorf("uploading training dataset failed: %w", err)
	}
	if err := storage.UploadFile(ctx, opts.Store, opts.Bucket, testKey, testOut); err != nil {
		return fmt.Errorf("uploading test dataset failed: %w", err)
	}
	trainURI := storage.JoinURI(opts.Bucket, trainKey)
	testURI := storage.JoinURI(opts.Bucket, testKey)
	emitProgress(&opts, db.StepUpload, db.CategoryStorage,
		fmt.Sprintf("Uploaded %s and %s", trainURI, testURI), nil)
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepUpload, db.CategoryStorage,
			map[string]string{"train": trainURI, "test": testURI})
	}

	// Step 5: Create the custom classifier
	fmt.Printf("Step 5/9: Creating document classifier %q...\n", opts.ClassifierName)
	classifierHandle, err := classify.TrainClassifier(ctx, opts.Classifier, classify.TrainInput{
		Name:        opts.ClassifierName,
		TrainingURI: trainURI,
		RoleARN:     opts.RoleARN,
		Language:    opts.Language,
	})
	if err != nil {
		return fmt.Errorf("creating classifier failed: %w", err)
	}
	emitProgress(&opts, db.StepClassifier, db.CategoryTraining,
		fmt.Sprintf("Submitted classifier %s", classifierHandle.ID), nil)
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepClassifier, db.CategoryTraining,
			map[string]string{"arn": classifierHandle.ID})
	}

	// Step 6: Watch training until it reaches a terminal state
	fmt.Printf("Step 6/9: Waiting for training to finish (interval %s, timeout %s)...\n", opts.PollInterval, opts.Timeout)
	trainingObs, err := watch.WaitForTerminal(ctx, &classify.ClassifierProbe{API: opts.Classifier, Handle: classifierHandle}, watch.Options{
		Interval: opts.PollInterval,
		Deadline: time.Now().Add(opts.Timeout),
		OnPoll: func(obs watch.Observation, elapsed time.Duration) {
			printer.PrintObservation("training", obs, elapsed)
		},
	})
	if err != nil {
		return fmt.Errorf("watching training failed: %w", err)
	}
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepTrainingStatus, db.CategoryTraining,
			map[string]string{"status": string(trainingObs.Status), "message": trainingObs.Message})
	}
	if !trainingObs.Terminal {
		return fmt.Errorf("training did not reach a terminal state within %s (last status %s)", opts.Timeout, trainingObs.Status)
	}
	if trainingObs.Failed {
		return fmt.Errorf("training failed with status %s: %s", trainingObs.Status, trainingObs.Message)
	}
	emitProgress(&opts, db.StepTrainingStatus, db.CategoryTraining,
		fmt.Sprintf("Training finished with status %s", trainingObs.Status), nil)

	// Step 7: Start the batch inference job against the trained classifier
	resultsURI := storage.JoinURI(opts.Bucket, path.Join(opts.Prefix, "results")) + "/"
	fmt.Printf("Step 7/9: Starting batch inference job...\n")
	jobHandle, err := classify.StartInferenceJob(ctx, opts.Jobs, classify.InferenceInput{
		JobName:       opts.JobName,
		ClassifierARN: classifierHandle.ID,
		InputURI:      testURI,
		OutputURI:     resultsURI,
		RoleARN:       opts.RoleARN,
	})
	if err != nil {
		return fmt.Errorf("starting inference job failed: %w", err)
	}
	emitProgress(&opts, db.StepInferenceJob, db.CategoryInference,
		fmt.Sprintf("Submitted inference job %s", jobHandle.ID), nil)
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepInferenceJob, db.CategoryInference,
			map[string]string{"job_id": jobHandle.ID})
	}

	// Step 8: Watch the inference job
	fmt.Printf("Step 8/9: Waiting for inference job to finish...\n")
	jobObs, err := watch.WaitForTerminal(ctx, &classify.JobProbe{API: opts.Jobs, Handle: jobHandle}, watch.Options{
		Interval: opts.PollInterval,
		Deadline: time.Now().Add(opts.Timeout),
		OnPoll: func(obs watch.Observation, elapsed time.Duration) {
			printer.PrintObservation("inference", obs, elapsed)
		},
	})
	if err != nil {
		return fmt.Errorf("watching inference job failed: %w", err)
	}
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepJobStatus, db.CategoryInference,
			map[string]string{"status": string(jobObs.Status), "message": jobObs.Message})
	}
	if !jobObs.Terminal {
		return fmt.Errorf("inference job did not reach a terminal state within %s (last status %s)", opts.Timeout, jobObs.Status)
	}
	if jobObs.Failed {
		return fmt.Errorf("inference job failed with status %s: %s", jobObs.Status, jobObs.Message)
	}

	// Step 9: Fetch and parse the prediction archive
	fmt.Printf("Step 9/9: Fetching predictions...\n")
	preds, err := FetchResults(ctx, opts.Store, opts.Jobs, jobHandle, opts.WorkDir)
	if err != nil {
		return fmt.Errorf("fetching results failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintPredictions(preds)
	}
	emitProgress(&opts, db.StepPredictions, db.CategoryResults,
		fmt.Sprintf("Fetched %d predictions", len(preds)), nil)
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepPredictions, db.CategoryResults, preds)
		_ = database.CompleteRun(ctx, runID, "completed")
	}

	fmt.Printf("Done! %d predictions for %d test records.\n", len(preds), testCount)
	return nil
}

// FetchResults downloads the finished job's result archive, extracts it
// under workDir, and parses the prediction records.
func FetchResults(ctx context.Context, store StoreAPI, jobs classify.JobAPI, handle classify.JobHandle, workDir string) ([]predictions.Prediction, error) {
	outputURI, err := classify.JobOutputURI(ctx, jobs, handle)
	if err != nil {
		return nil, err
	}
	bucket, key, err := storage.ParseURI(outputURI)
	if err != nil {
		return nil, err
	}

	archivePath := filepath.Join(workDir, "output.tar.gz")
	if err := storage.DownloadFile(ctx, store, bucket, key, archivePath); err != nil {
		return nil, err
	}

	resultsDir := filepath.Join(workDir, "results")
	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	archive, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer archive.Close()
	if err := storage.ExtractTarGz(archive, resultsDir); err != nil {
		return nil, err
	}

	predictionsPath, err := findPredictionsFile(resultsDir)
	if err != nil {
		return nil, err
	}
	return predictions.ReadFile(predictionsPath)
}

// findPredictionsFile locates the prediction file inside an extracted
// result archive. The service nests it under a job-specific directory, so
// the walk matches by filename rather than a fixed path.
func findPredictionsFile(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && (d.Name() == "predictions.jsonl" || d.Name() == "predictions.json") {
			found = p
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan results directory: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("no predictions file found under %s", dir)
	}
	return found, nil
}
