package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/text-classifier/internal/storage"
)

var uploadDatasetCmd = &cobra.Command{
	Use:   "upload-dataset",
	Short: "Upload a transformed dataset to the object store",
	Long:  "Upload a local file to S3 (or an S3-compatible store) under the given bucket and key prefix.",
	RunE:  runUploadDataset,
}

var (
	uploadFile     string
	uploadBucket   string
	uploadPrefix   string
	uploadKey      string
	uploadRegion   string
	uploadEndpoint string
)

func init() {
	uploadDatasetCmd.Flags().StringVarP(&uploadFile, "file", "f", "", "Path to local file to upload (required)")
	uploadDatasetCmd.Flags().StringVarP(&uploadBucket, "bucket", "b", "", "Destination bucket (required)")
	uploadDatasetCmd.Flags().StringVarP(&uploadPrefix, "prefix", "p", "", "Key prefix inside the bucket")
	uploadDatasetCmd.Flags().StringVarP(&uploadKey, "key", "k", "", "Full object key (overrides --prefix + filename)")
	uploadDatasetCmd.Flags().StringVar(&uploadRegion, "region", "", "AWS region (defaults to AWS_REGION env var)")
	uploadDatasetCmd.Flags().StringVar(&uploadEndpoint, "endpoint", "", "Custom S3 endpoint URL, e.g. for MinIO")

	_ = uploadDatasetCmd.MarkFlagRequired("file")
	_ = uploadDatasetCmd.MarkFlagRequired("bucket")

	rootCmd.AddCommand(uploadDatasetCmd)
}

func runUploadDataset(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	key := uploadKey
	if key == "" {
		key = path.Join(uploadPrefix, filepath.Base(uploadFile))
	}

	client, err := newStorageClient(ctx, uploadRegion, uploadEndpoint)
	if err != nil {
		return err
	}

	if err := storage.UploadFile(ctx, client, uploadBucket, key, uploadFile); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Uploaded %s\n", storage.JoinURI(uploadBucket, key))

	return nil
}
