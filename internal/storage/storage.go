// Package storage provides the S3-backed object store used for dataset
// uploads and result-archive downloads.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Options configures the S3 client.
type Options struct {
	Region   string
	Endpoint string // optional, for MinIO-backed testing
}

// LoadAWSConfig loads the default AWS config chain for the given region.
// The result also feeds the classification-service client, so both clients
// share one credential resolution.
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// NewClient builds an S3 client. A non-empty Endpoint switches the client
// to path-style addressing against that endpoint.
func NewClient(cfg aws.Config, opts Options) *s3.Client {
	clientOpts := []func(*s3.Options){}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(cfg, clientOpts...)
}

// PutAPI is the slice of the S3 client used for uploads.
type PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// GetAPI is the slice of the S3 client used for downloads.
type GetAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Upload writes r to bucket/key byte for byte.
func Upload(ctx context.Context, api PutAPI, bucket, key string, r io.Reader) error {
	_, err := api.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// UploadFile uploads a local file to bucket/key.
func UploadFile(ctx context.Context, api PutAPI, bucket, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Upload(ctx, api, bucket, key, f)
}

// Download copies bucket/key into w.
func Download(ctx context.Context, api GetAPI, bucket, key string, w io.Writer) error {
	out, err := api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// DownloadFile downloads bucket/key into a local file, overwriting it.
func DownloadFile(ctx context.Context, api GetAPI, bucket, key, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	return Download(ctx, api, bucket, key, f)
}
