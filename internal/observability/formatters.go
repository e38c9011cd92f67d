// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/text-classifier/internal/labels"
	"github.com/jonathan/text-classifier/internal/predictions"
	"github.com/jonathan/text-classifier/internal/watch"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintLabelIndex outputs the loaded class names with their label indices.
func (p *Printer) PrintLabelIndex(idx *labels.Index) {
	if idx == nil {
		return
	}

	var sb strings.Builder
	names := idx.Names()
	count := min(len(names), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("%d → %s\n", i+1, names[i]))
	}
	if len(names) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(names)-maxItemsToShow))
	}

	p.printBox(fmt.Sprintf("Label Index (%d classes)", idx.Len()), strings.TrimRight(sb.String(), "\n"))
}

// PrintTransformSummary outputs a summary of a finished dataset transformation.
func (p *Printer) PrintTransformSummary(mode string, count int, destPath string) {
	content := fmt.Sprintf("Mode:     %s\nRecords:  %d\nOutput:   %s", mode, count, destPath)
	p.printBox("Dataset Transform", content)
}

// PrintObservation outputs one poll result with total elapsed time since
// the job was submitted.
func (p *Printer) PrintObservation(kind string, obs watch.Observation, elapsed time.Duration) {
	fmt.Fprintf(p.out, "[%s] status=%s elapsed=%s\n", kind, obs.Status, elapsed.Round(time.Second))
	if obs.Message != "" {
		fmt.Fprintf(p.out, "[%s] message: %s\n", kind, obs.Message)
	}
}

// PrintPredictions outputs a preview of parsed prediction records.
func (p *Printer) PrintPredictions(preds []predictions.Prediction) {
	var sb strings.Builder

	count := min(len(preds), maxItemsToShow)
	for i := 0; i < count; i++ {
		if top, ok := preds[i].Top(); ok {
			sb.WriteString(fmt.Sprintf("line %d: %s (%.2f)\n", preds[i].Line, top.Name, top.Score))
		} else {
			sb.WriteString(fmt.Sprintf("line %d: (no classes)\n", preds[i].Line))
		}
	}
	if len(preds) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(preds)-maxItemsToShow))
	}

	p.printBox(fmt.Sprintf("Predictions (%d records)", len(preds)), strings.TrimRight(sb.String(), "\n"))
}
