// Package labels provides the ordered class-name index used to resolve the
// integer label indices carried by the raw dataset.
package labels

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Index is an immutable, 1-indexed mapping from label index to class name,
// built from a labels file with one class name per line. The line number is
// the label index, so the valid domain is exactly 1..Len().
type Index struct {
	names []string
}

// Load reads a labels file and builds an Index.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels file %s: %w", path, err)
	}
	defer f.Close()

	idx, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels file %s: %w", path, err)
	}
	return idx, nil
}

// Read builds an Index from a reader with one class name per line. Blank
// lines are rejected: a gap would shift every index after it.
func Read(r io.Reader) (*Index, error) {
	var names []string

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			return nil, fmt.Errorf("blank class name at line %d", line)
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan labels: %w", err)
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("labels file contains no class names")
	}

	return &Index{names: names}, nil
}

// Name returns the class name for a 1-based label index. The second return
// value is false when the index is outside 1..Len().
func (ix *Index) Name(i int) (string, bool) {
	if i < 1 || i > len(ix.names) {
		return "", false
	}
	return ix.names[i-1], true
}

// Len returns the number of classes in the index.
func (ix *Index) Len() int {
	return len(ix.names)
}

// Names returns a copy of the class names in index order.
func (ix *Index) Names() []string {
	out := make([]string, len(ix.names))
	copy(out, ix.names)
	return out
}
