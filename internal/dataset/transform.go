// Package dataset converts raw labeled CSV records into the line-oriented
// format consumed by the classification service.
package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonathan/text-classifier/internal/labels"
)

// Mode selects the output shape of a transformation.
type Mode int

const (
	// Labeled emits "label_name,body" per record, for classifier training.
	Labeled Mode = iota
	// Unlabeled emits the bare body per record, for batch inference input.
	Unlabeled
)

func (m Mode) String() string {
	switch m {
	case Labeled:
		return "labeled"
	case Unlabeled:
		return "unlabeled"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a CLI flag value onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "labeled":
		return Labeled, nil
	case "unlabeled":
		return Unlabeled, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want labeled or unlabeled)", s)
	}
}

// Options tunes a transformation run.
type Options struct {
	// SampleLimit caps the number of records processed; zero means no cap.
	// Used to cut small smoke-test subsets from a full dataset.
	SampleLimit int
}

// Transform reads label_index,title,body records from sourcePath and writes
// one transformed record per line to destPath, overwriting any existing
// content. In Labeled mode each record becomes "label_name,body"; in
// Unlabeled mode the bare body. Records are emitted in source order and the
// body is preserved byte for byte, embedded commas included. Returns the
// number of records written.
//
// The destination is committed atomically: output streams to a temp file
// beside destPath and is renamed into place only after the whole source has
// transformed cleanly, so a failed run never leaves a partial file behind.
func Transform(sourcePath, destPath string, mode Mode, idx *labels.Index, opts Options) (count int, err error) {
	if mode == Labeled && idx == nil {
		return 0, fmt.Errorf("labeled mode requires a label index")
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open source %s: %w", sourcePath, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(destPath), filepath.Base(destPath)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		if opts.SampleLimit > 0 && count >= opts.SampleLimit {
			break
		}
		lineNo++

		out, terr := transformLine(scanner.Text(), lineNo, mode, idx)
		if terr != nil {
			err = terr
			return 0, err
		}
		if _, werr := w.WriteString(out + "\n"); werr != nil {
			err = fmt.Errorf("failed to write record: %w", werr)
			return 0, err
		}
		count++
	}
	if serr := scanner.Err(); serr != nil {
		err = fmt.Errorf("failed to read source %s: %w", sourcePath, serr)
		return 0, err
	}

	if ferr := w.Flush(); ferr != nil {
		err = fmt.Errorf("failed to flush output: %w", ferr)
		return 0, err
	}
	if cerr := tmp.Close(); cerr != nil {
		err = fmt.Errorf("failed to close output: %w", cerr)
		return 0, err
	}
	if rerr := os.Rename(tmp.Name(), destPath); rerr != nil {
		err = fmt.Errorf("failed to commit output %s: %w", destPath, rerr)
		return 0, err
	}

	return count, nil
}

// transformLine applies the bounded three-way split. Splitting on every
// comma would shatter a body that contains commas, so the split is capped
// at 3 parts and the body keeps everything after the second comma.
func transformLine(line string, lineNo int, mode Mode, idx *labels.Index) (string, error) {
	parts := strings.SplitN(line, ",", 3)
	if len(parts) < 3 {
		return "", &MalformedRecordError{Line: lineNo, Text: line}
	}
	body := parts[2]

	if mode == Unlabeled {
		return body, nil
	}

	labelIdx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return "", &MalformedRecordError{Line: lineNo, Text: line}
	}
	name, ok := idx.Name(labelIdx)
	if !ok {
		return "", &UnknownLabelError{Line: lineNo, Index: labelIdx}
	}
	return name + "," + body, nil
}
