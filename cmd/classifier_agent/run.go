package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/text-classifier/internal/config"
	"github.com/jonathan/text-classifier/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full classification pipeline end-to-end",
	Long: `Orchestrates the entire classification process: transform -> upload -> train -> inference -> results.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath     string
	runLabels         string
	runTrainFile      string
	runTestFile       string
	runWorkDir        string
	runBucket         string
	runPrefix         string
	runRegion         string
	runEndpoint       string
	runRoleARN        string
	runClassifierName string
	runJobName        string
	runLanguage       string
	runPollInterval   int
	runTimeout        int
	runSampleLimit    int
	runVerbose        bool
	runDatabaseURL    string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runLabels, "labels", "l", "", "Path to labels file, one class name per line")
	runCommand.Flags().StringVar(&runTrainFile, "train-file", "", "Path to raw labeled training CSV")
	runCommand.Flags().StringVar(&runTestFile, "test-file", "", "Path to raw test CSV")
	runCommand.Flags().StringVar(&runWorkDir, "work-dir", "", "Directory for transformed datasets and results")
	runCommand.Flags().StringVarP(&runBucket, "bucket", "b", "", "S3 bucket for datasets and results")
	runCommand.Flags().StringVarP(&runPrefix, "prefix", "p", "", "Key prefix inside the bucket")
	runCommand.Flags().StringVar(&runRegion, "region", "", "AWS region (defaults to AWS_REGION env var)")
	runCommand.Flags().StringVar(&runEndpoint, "endpoint", "", "Custom S3 endpoint URL, e.g. for MinIO")
	runCommand.Flags().StringVar(&runRoleARN, "role-arn", "", "Data access role ARN the service assumes")
	runCommand.Flags().StringVarP(&runClassifierName, "name", "n", "", "Classifier name (generated if omitted)")
	runCommand.Flags().StringVar(&runJobName, "job-name", "", "Inference job name (generated by the service if omitted)")
	runCommand.Flags().StringVar(&runLanguage, "language", "", "Two-letter language code of the documents")
	runCommand.Flags().IntVar(&runPollInterval, "poll-interval", 0, "Seconds between status probes")
	runCommand.Flags().IntVar(&runTimeout, "timeout", 0, "Minutes to wait for each remote phase")
	runCommand.Flags().IntVar(&runSampleLimit, "sample-limit", 0, "Process at most this many records per dataset (0 = all)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	// Database URL for artifact persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Validate loaded config
		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("labels") {
		cfg.Labels = runLabels
	}
	if cmd.Flags().Changed("train-file") {
		cfg.TrainFile = runTrainFile
	}
	if cmd.Flags().Changed("test-file") {
		cfg.TestFile = runTestFile
	}
	if cmd.Flags().Changed("work-dir") {
		cfg.WorkDir = runWorkDir
	}
	if cmd.Flags().Changed("bucket") {
		cfg.Bucket = runBucket
	}
	if cmd.Flags().Changed("prefix") {
		cfg.Prefix = runPrefix
	}
	if cmd.Flags().Changed("region") {
		cfg.Region = runRegion
	}
	if cmd.Flags().Changed("endpoint") {
		cfg.Endpoint = runEndpoint
	}
	if cmd.Flags().Changed("role-arn") {
		cfg.RoleARN = runRoleARN
	}
	if cmd.Flags().Changed("name") {
		cfg.ClassifierName = runClassifierName
	}
	if cmd.Flags().Changed("language") {
		cfg.Language = runLanguage
	}
	if cmd.Flags().Changed("poll-interval") {
		cfg.PollIntervalSeconds = runPollInterval
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutMinutes = runTimeout
	}
	if cmd.Flags().Changed("sample-limit") {
		cfg.SampleLimit = runSampleLimit
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}

	// Step 3: Apply defaults for unset values
	defaults := config.Config{
		WorkDir:             "work",
		Language:            "en",
		PollIntervalSeconds: 60,
		TimeoutMinutes:      120,
	}
	cfg = cfg.MergeWithDefaults(defaults)

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	// Step 4: Validate required fields after merging
	if cfg.Labels == "" {
		return fmt.Errorf("labels file is required (use --labels or config file)")
	}
	if cfg.TrainFile == "" {
		return fmt.Errorf("training file is required (use --train-file or config file)")
	}
	if cfg.TestFile == "" {
		return fmt.Errorf("test file is required (use --test-file or config file)")
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("bucket is required (use --bucket or config file)")
	}
	if cfg.RoleARN == "" {
		return fmt.Errorf("role ARN is required (use --role-arn or config file)")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Step 5: Build the AWS clients
	store, err := newStorageClient(ctx, cfg.Region, cfg.Endpoint)
	if err != nil {
		return err
	}
	svc, err := newClassifyClient(ctx, cfg.Region)
	if err != nil {
		return err
	}

	// Step 6: Run the pipeline
	return pipeline.RunPipeline(ctx, pipeline.RunOptions{
		LabelsPath:     cfg.Labels,
		TrainPath:      cfg.TrainFile,
		TestPath:       cfg.TestFile,
		WorkDir:        cfg.WorkDir,
		Bucket:         cfg.Bucket,
		Prefix:         cfg.Prefix,
		RoleARN:        cfg.RoleARN,
		ClassifierName: cfg.ClassifierName,
		JobName:        runJobName,
		Language:       cfg.Language,
		PollInterval:   time.Duration(cfg.PollIntervalSeconds) * time.Second,
		Timeout:        time.Duration(cfg.TimeoutMinutes) * time.Minute,
		SampleLimit:    cfg.SampleLimit,
		Verbose:        cfg.Verbose,
		DatabaseURL:    cfg.DatabaseURL,
		Store:          store,
		Classifier:     svc,
		Jobs:           svc,
	})
}
