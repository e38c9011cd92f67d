package dataset

import "fmt"

// UnknownLabelError reports a record whose label index is absent from the
// label index. The whole transformation aborts; there is no partial-success
// mode.
type UnknownLabelError struct {
	Line  int
	Index int
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown label index %d at line %d", e.Index, e.Line)
}

// MalformedRecordError reports a source line that does not split into the
// expected label,title,body shape.
type MalformedRecordError struct {
	Line int
	Text string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at line %d: %q", e.Line, e.Text)
}
