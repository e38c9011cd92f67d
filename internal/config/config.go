// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Dataset paths
	Labels    string `json:"labels,omitempty"`     // Path to labels file, one class name per line
	TrainFile string `json:"train_file,omitempty"` // Path to raw labeled training CSV
	TestFile  string `json:"test_file,omitempty"`  // Path to raw test CSV
	WorkDir   string `json:"work_dir,omitempty"`   // Directory for transformed datasets and results

	// Object store
	Bucket   string `json:"bucket,omitempty"`   // S3 bucket for datasets and results
	Prefix   string `json:"prefix,omitempty"`   // Key prefix inside the bucket
	Region   string `json:"region,omitempty"`   // AWS region
	Endpoint string `json:"endpoint,omitempty" validate:"omitempty,url"` // Custom S3 endpoint, e.g. MinIO

	// Classification service
	RoleARN        string `json:"role_arn,omitempty"`        // Data access role the service assumes
	ClassifierName string `json:"classifier_name,omitempty"` // Name for the trained classifier
	Language       string `json:"language,omitempty" validate:"omitempty,len=2"` // Two-letter language code

	// Polling
	PollIntervalSeconds int `json:"poll_interval_seconds,omitempty" validate:"gte=0"` // Fixed delay between status probes
	TimeoutMinutes      int `json:"timeout_minutes,omitempty" validate:"gte=0"`       // Wall-clock deadline for each watch

	// Behavior
	SampleLimit int    `json:"sample_limit,omitempty" validate:"gte=0"` // Cap on records per transformed dataset; 0 = all
	Verbose     bool   `json:"verbose,omitempty"`                       // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty"`                  // PostgreSQL connection URL for run persistence
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values. Required fields
// are not checked here; those are enforced by CLI flag validation after
// merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("config error: field %s failed %q validation", first.Field(), first.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	// Validate file paths exist (if specified)
	for _, p := range []struct{ name, path string }{
		{"labels", c.Labels},
		{"train_file", c.TrainFile},
		{"test_file", c.TestFile},
	} {
		if p.path == "" {
			continue
		}
		if _, err := os.Stat(p.path); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s not found: %s", p.name, p.path)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Labels == "" {
		result.Labels = defaults.Labels
	}
	if result.TrainFile == "" {
		result.TrainFile = defaults.TrainFile
	}
	if result.TestFile == "" {
		result.TestFile = defaults.TestFile
	}
	if result.WorkDir == "" {
		result.WorkDir = defaults.WorkDir
	}
	if result.Bucket == "" {
		result.Bucket = defaults.Bucket
	}
	if result.Prefix == "" {
		result.Prefix = defaults.Prefix
	}
	if result.Region == "" {
		result.Region = defaults.Region
	}
	if result.Endpoint == "" {
		result.Endpoint = defaults.Endpoint
	}
	if result.RoleARN == "" {
		result.RoleARN = defaults.RoleARN
	}
	if result.ClassifierName == "" {
		result.ClassifierName = defaults.ClassifierName
	}
	if result.Language == "" {
		result.Language = defaults.Language
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.PollIntervalSeconds == 0 {
		result.PollIntervalSeconds = defaults.PollIntervalSeconds
	}
	if result.TimeoutMinutes == 0 {
		result.TimeoutMinutes = defaults.TimeoutMinutes
	}
	if result.SampleLimit == 0 {
		result.SampleLimit = defaults.SampleLimit
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
