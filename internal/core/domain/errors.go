package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable means the local store could not be opened
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrStorageWriteFailed means a write transaction failed
	ErrStorageWriteFailed = errors.New("storage write failed")

	// ErrNotFound means no record matched the lookup
	ErrNotFound = errors.New("file not found")

	// ErrInvalidName means a file name failed validation
	ErrInvalidName = errors.New("invalid file name")
)

// IOError is a failed storage transaction, tagged with the operation that failed
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError wraps err with the operation name; nil stays nil
func NewIOError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Err: err}
}
