package formatter

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when there is no payload at all.
var ErrEmptyInput = errors.New("no task payload")

// ErrMalformedPayload matches every *PayloadError via errors.Is.
var ErrMalformedPayload = errors.New("malformed payload")

// PayloadError reports a payload that is present but cannot be interpreted,
// either as a whole (Index < 0) or for a single task.
type PayloadError struct {
	Index int    // position of the offending task, -1 for the whole payload
	Field string // offending field, if known
	Err   error
}

func (e *PayloadError) Error() string {
	switch {
	case e.Index < 0 && e.Field == "":
		return fmt.Sprintf("malformed payload: %v", e.Err)
	case e.Index < 0:
		return fmt.Sprintf("malformed payload at %s: %v", e.Field, e.Err)
	case e.Field == "":
		return fmt.Sprintf("task %d: %v", e.Index, e.Err)
	default:
		return fmt.Sprintf("task %d: %s: %v", e.Index, e.Field, e.Err)
	}
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMalformedPayload) true for any PayloadError.
func (e *PayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}

func payloadErr(err error) error {
	return &PayloadError{Index: -1, Err: err}
}

func taskErr(index int, field string, err error) error {
	return &PayloadError{Index: index, Field: field, Err: err}
}
