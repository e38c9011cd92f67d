package main

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadDatasetCommand_FlagsValidation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantError   bool
		errorString string
	}{
		{
			name:        "Missing --file flag",
			args:        []string{"upload-dataset", "--bucket", "datasets"},
			wantError:   true,
			errorString: "required",
		},
		{
			name:        "Missing --bucket flag",
			args:        []string{"upload-dataset", "--file", "train.csv"},
			wantError:   true,
			errorString: "required",
		},
	}

	binaryPath := getBinaryPath(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binaryPath, tt.args...)
			output, err := cmd.CombinedOutput()

			if tt.wantError {
				assert.Error(t, err)
				if tt.errorString != "" {
					assert.Contains(t, string(output), tt.errorString)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
