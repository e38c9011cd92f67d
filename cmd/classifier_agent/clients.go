package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jonathan/text-classifier/internal/classify"
	"github.com/jonathan/text-classifier/internal/storage"
)

// newStorageClient builds an S3 client from the shared AWS config chain,
// honoring a custom endpoint for S3-compatible stores like MinIO.
func newStorageClient(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	cfg, err := storage.LoadAWSConfig(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return storage.NewClient(cfg, storage.Options{Region: region, Endpoint: endpoint}), nil
}

// newClassifyClient builds a Comprehend client from the shared AWS config chain.
func newClassifyClient(ctx context.Context, region string) (*comprehend.Client, error) {
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	cfg, err := storage.LoadAWSConfig(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return classify.NewClient(cfg), nil
}
