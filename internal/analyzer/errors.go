package analyzer

import (
	"errors"
	"fmt"
)

// ErrEmptyLog is returned when the caller-supplied log text is empty or
// whitespace-only. The completion provider is never contacted in that case.
var ErrEmptyLog = errors.New("log_text cannot be empty")

// ErrBadReply is the common category for failures turning the model's raw
// reply into a report. Use errors.Is against it at the boundary; the concrete
// error retains the diagnostic detail.
var ErrBadReply = errors.New("model reply failed validation")

// MalformedReplyError means the stripped reply was not syntactically valid
// JSON at all.
type MalformedReplyError struct {
	Err error
}

func (e *MalformedReplyError) Error() string {
	return fmt.Sprintf("model returned invalid JSON: %v", e.Err)
}

func (e *MalformedReplyError) Unwrap() error { return e.Err }

func (e *MalformedReplyError) Is(target error) bool { return target == ErrBadReply }

// SchemaError means the reply was valid JSON but does not match the report
// shape: a required field is missing, has the wrong type, or is out of range.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("report schema violation: field %q %s", e.Field, e.Reason)
}

func (e *SchemaError) Is(target error) bool { return target == ErrBadReply }
