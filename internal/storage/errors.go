package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord indicates a stored row could not be parsed into a date and rate.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrMissingHeader indicates the store does not start with the expected header.
	ErrMissingHeader = errors.New("unexpected csv header")
)

// RecordError identifies the offending data row (1-based, header excluded).
type RecordError struct {
	Row int
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: row %d: %v", ErrMalformedRecord, e.Row, e.Err)
}

func (e *RecordError) Unwrap() []error {
	return []error{ErrMalformedRecord, e.Err}
}
