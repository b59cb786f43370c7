package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrNoValidDateRows is returned when a workbook has no row with a parseable date.
var ErrNoValidDateRows = stderrors.New("no rows with a valid date")

// MissingColumnError reports a required logical column with no matching header.
type MissingColumnError struct {
	Field   string
	Present []string
}

// Error implements the error interface
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column %q; columns found: [%s]", e.Field, strings.Join(e.Present, ", "))
}

// SinkWriteError reports a failure writing one publication destination.
type SinkWriteError struct {
	Sink string
	File string
	Err  error
}

// Error implements the error interface
func (e *SinkWriteError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("write %s to sink %s: %v", e.File, e.Sink, e.Err)
	}
	return fmt.Sprintf("write sink %s: %v", e.Sink, e.Err)
}

// Unwrap returns the underlying error
func (e *SinkWriteError) Unwrap() error {
	return e.Err
}

// PushError reports a failed outbound sync step. It never invalidates local output.
type PushError struct {
	Step   string
	Output string
	Err    error
}

// Error implements the error interface
func (e *PushError) Error() string {
	msg := fmt.Sprintf("push step %q failed: %v", e.Step, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

// Unwrap returns the underlying error
func (e *PushError) Unwrap() error {
	return e.Err
}

// IsMissingColumn reports whether err carries a MissingColumnError.
func IsMissingColumn(err error) bool {
	var mce *MissingColumnError
	return stderrors.As(err, &mce)
}

// IsPushError reports whether err carries a PushError.
func IsPushError(err error) bool {
	var pe *PushError
	return stderrors.As(err, &pe)
}
