package listcodec

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPath is returned when a list path does not end with
	// FileExtension. No I/O is attempted.
	ErrInvalidPath = errors.New("invalid list path")

	// ErrNotAList is returned when a document's top-level value is not a
	// JSON array.
	ErrNotAList = errors.New("list document is not a JSON array")

	// ErrIO marks read and write failures on a list file.
	ErrIO = errors.New("list file I/O failed")
)

// Issue is a single schema violation inside a record.
type Issue struct {
	Path    string // instance location, e.g. "/id"
	Message string
	Keyword string
}

// MalformedRecordError reports one array element that could not be turned
// into a record.
type MalformedRecordError struct {
	Index  int    // position in the source array
	ID     string // the element's id when it had a usable one
	Issues []Issue
}

func (e *MalformedRecordError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "record %d", e.Index)
	if e.ID != "" {
		fmt.Fprintf(&b, " (%s)", e.ID)
	}
	b.WriteString(" is malformed")
	for i, issue := range e.Issues {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		if issue.Path != "" {
			b.WriteString(issue.Path + ": ")
		}
		b.WriteString(issue.Message)
	}
	return b.String()
}
