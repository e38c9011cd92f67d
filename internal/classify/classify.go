// Package classify adapts the managed document-classification service:
// creating custom classifiers, starting batch inference jobs, and probing
// their status for the watch loop.
package classify

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/google/uuid"

	"github.com/jonathan/text-classifier/internal/watch"
)

// JobHandle identifies a submitted remote job: the ARN or id the service
// returned plus the submit timestamp used for elapsed-time reporting.
type JobHandle struct {
	ID         string
	SubmitTime time.Time
}

// ClassifierAPI is the slice of the Comprehend client used for classifier
// training and training-status probes.
type ClassifierAPI interface {
	CreateDocumentClassifier(ctx context.Context, params *comprehend.CreateDocumentClassifierInput, optFns ...func(*comprehend.Options)) (*comprehend.CreateDocumentClassifierOutput, error)
	DescribeDocumentClassifier(ctx context.Context, params *comprehend.DescribeDocumentClassifierInput, optFns ...func(*comprehend.Options)) (*comprehend.DescribeDocumentClassifierOutput, error)
}

// JobAPI is the slice of the Comprehend client used for batch inference jobs.
type JobAPI interface {
	StartDocumentClassificationJob(ctx context.Context, params *comprehend.StartDocumentClassificationJobInput, optFns ...func(*comprehend.Options)) (*comprehend.StartDocumentClassificationJobOutput, error)
	DescribeDocumentClassificationJob(ctx context.Context, params *comprehend.DescribeDocumentClassificationJobInput, optFns ...func(*comprehend.Options)) (*comprehend.DescribeDocumentClassificationJobOutput, error)
}

// NewClient builds a Comprehend client from an AWS config. The returned
// client satisfies both ClassifierAPI and JobAPI.
func NewClient(cfg aws.Config) *comprehend.Client {
	return comprehend.NewFromConfig(cfg)
}

// TrainInput describes a classifier training request.
type TrainInput struct {
	Name        string // classifier name; generated when empty
	TrainingURI string // s3:// URI of the labeled training file
	RoleARN     string // data access role the service assumes to read it
	Language    string // two-letter language code, e.g. "en"
}

// TrainClassifier submits a custom-classifier training request and returns
// a handle for status polling. Training runs asynchronously inside the
// service; follow with ClassifierProbe and watch.WaitForTerminal.
func TrainClassifier(ctx context.Context, api ClassifierAPI, in TrainInput) (JobHandle, error) {
	name := in.Name
	if name == "" {
		name = "classifier-" + uuid.NewString()
	}

	out, err := api.CreateDocumentClassifier(ctx, &comprehend.CreateDocumentClassifierInput{
		DocumentClassifierName: aws.String(name),
		DataAccessRoleArn:      aws.String(in.RoleARN),
		LanguageCode:           types.LanguageCode(in.Language),
		InputDataConfig: &types.DocumentClassifierInputDataConfig{
			S3Uri: aws.String(in.TrainingURI),
		},
	})
	if err != nil {
		return JobHandle{}, fmt.Errorf("failed to create document classifier: %w", err)
	}

	return JobHandle{
		ID:         aws.ToString(out.DocumentClassifierArn),
		SubmitTime: time.Now(),
	}, nil
}

// InferenceInput describes a batch inference request against a trained
// classifier.
type InferenceInput struct {
	JobName       string // generated when empty
	ClassifierARN string
	InputURI      string // s3:// URI of the unlabeled inference file
	OutputURI     string // s3:// prefix the service writes the result archive under
	RoleARN       string
}

// StartInferenceJob submits a batch classification job, one document per
// input line, and returns a handle for status polling.
func StartInferenceJob(ctx context.Context, api JobAPI, in InferenceInput) (JobHandle, error) {
	name := in.JobName
	if name == "" {
		name = "inference-" + uuid.NewString()
	}

	out, err := api.StartDocumentClassificationJob(ctx, &comprehend.StartDocumentClassificationJobInput{
		JobName:               aws.String(name),
		DocumentClassifierArn: aws.String(in.ClassifierARN),
		DataAccessRoleArn:     aws.String(in.RoleARN),
		InputDataConfig: &types.InputDataConfig{
			S3Uri:       aws.String(in.InputURI),
			InputFormat: types.InputFormatOneDocPerLine,
		},
		OutputDataConfig: &types.OutputDataConfig{
			S3Uri: aws.String(in.OutputURI),
		},
	})
	if err != nil {
		return JobHandle{}, fmt.Errorf("failed to start classification job: %w", err)
	}

	return JobHandle{
		ID:         aws.ToString(out.JobId),
		SubmitTime: time.Now(),
	}, nil
}

// ClassifierProbe implements watch.Probe over DescribeDocumentClassifier.
type ClassifierProbe struct {
	API    ClassifierAPI
	Handle JobHandle
}

func (p *ClassifierProbe) Probe(ctx context.Context) (watch.Observation, error) {
	out, err := p.API.DescribeDocumentClassifier(ctx, &comprehend.DescribeDocumentClassifierInput{
		DocumentClassifierArn: aws.String(p.Handle.ID),
	})
	if err != nil {
		return watch.Observation{}, err
	}
	props := out.DocumentClassifierProperties
	if props == nil {
		return watch.Observation{}, fmt.Errorf("describe returned no classifier properties")
	}

	obs := watch.Observation{
		Status:     watch.Status(props.Status),
		SubmitTime: p.Handle.SubmitTime,
		Message:    aws.ToString(props.Message),
	}
	if props.SubmitTime != nil {
		obs.SubmitTime = *props.SubmitTime
	}

	switch props.Status {
	case types.ModelStatusTrained:
		obs.Terminal = true
	case types.ModelStatusInError, types.ModelStatusStopped:
		obs.Terminal = true
		obs.Failed = true
	}
	return obs, nil
}

// JobProbe implements watch.Probe over DescribeDocumentClassificationJob.
type JobProbe struct {
	API    JobAPI
	Handle JobHandle
}

func (p *JobProbe) Probe(ctx context.Context) (watch.Observation, error) {
	out, err := p.API.DescribeDocumentClassificationJob(ctx, &comprehend.DescribeDocumentClassificationJobInput{
		JobId: aws.String(p.Handle.ID),
	})
	if err != nil {
		return watch.Observation{}, err
	}
	props := out.DocumentClassificationJobProperties
	if props == nil {
		return watch.Observation{}, fmt.Errorf("describe returned no job properties")
	}

	obs := watch.Observation{
		Status:     watch.Status(props.JobStatus),
		SubmitTime: p.Handle.SubmitTime,
		Message:    aws.ToString(props.Message),
	}
	if props.SubmitTime != nil {
		obs.SubmitTime = *props.SubmitTime
	}

	switch props.JobStatus {
	case types.JobStatusCompleted:
		obs.Terminal = true
	case types.JobStatusFailed, types.JobStatusStopped:
		obs.Terminal = true
		obs.Failed = true
	}
	return obs, nil
}

// JobOutputURI returns the s3:// location of the finished job's result
// archive. The service only fills it in once the job completes.
func JobOutputURI(ctx context.Context, api JobAPI, handle JobHandle) (string, error) {
	out, err := api.DescribeDocumentClassificationJob(ctx, &comprehend.DescribeDocumentClassificationJobInput{
		JobId: aws.String(handle.ID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe classification job: %w", err)
	}
	props := out.DocumentClassificationJobProperties
	if props == nil || props.OutputDataConfig == nil || props.OutputDataConfig.S3Uri == nil {
		return "", fmt.Errorf("job %s has no output location yet", handle.ID)
	}
	return *props.OutputDataConfig.S3Uri, nil
}
