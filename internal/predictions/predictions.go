// Package predictions parses the line-oriented prediction records a batch
// classification job writes into its result archive.
package predictions

import (
	"bufio"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/text-classifier/internal/schemas"
)

//go:embed record.schema.json
var recordSchema string

// ClassScore is one candidate class with its model confidence.
type ClassScore struct {
	Name  string  `json:"Name"`
	Score float64 `json:"Score"`
}

// Prediction is one JSON-encoded prediction record. Records appear one per
// inference input line and preserve input order.
type Prediction struct {
	File    string       `json:"File"`
	Line    int          `json:"Line"`
	Classes []ClassScore `json:"Classes"`
}

// Top returns the class with the highest score. The second return value is
// false for a record with no classes.
func (p Prediction) Top() (ClassScore, bool) {
	if len(p.Classes) == 0 {
		return ClassScore{}, false
	}
	top := p.Classes[0]
	for _, c := range p.Classes[1:] {
		if c.Score > top.Score {
			top = c
		}
	}
	return top, true
}

// Read parses one prediction record per line from r. Each line is checked
// against the record schema before decoding, so a malformed line reports
// its position instead of a bare JSON error.
func Read(r io.Reader) ([]Prediction, error) {
	var preds []Prediction

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}

		if err := schemas.ValidateJSONString(recordSchema, line); err != nil {
			return nil, fmt.Errorf("invalid prediction record at line %d: %w", lineNo, err)
		}

		var p Prediction
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			return nil, fmt.Errorf("failed to decode prediction at line %d: %w", lineNo, err)
		}
		preds = append(preds, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read predictions: %w", err)
	}

	return preds, nil
}

// ReadFile parses a prediction file, one JSON record per line.
func ReadFile(path string) ([]Prediction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open predictions file %s: %w", path, err)
	}
	defer f.Close()

	preds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return preds, nil
}
