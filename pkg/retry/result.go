package retry

import (
	"fmt"
)

// Kind classifies why a retried call failed
type Kind string

const (
	KindTransport Kind = "transport" // request never produced a response
	KindStatus    Kind = "status"    // response with a non-2xx status
	KindDecode    Kind = "decode"    // 2xx response whose body could not be decoded
	KindCanceled  Kind = "canceled"  // context canceled or deadline exceeded
	KindOffline   Kind = "offline"   // call skipped because no usable session exists
	KindInvalid   Kind = "invalid"   // request could not be built
)

// Failure is the error-shaped value every retried call returns on exhaustion
type Failure struct {
	Kind       Kind
	Detail     string
	StatusCode int
	Attempts   int
	Err        error
}

func (f *Failure) Error() string {
	msg := string(f.Kind)
	if f.StatusCode != 0 {
		msg = fmt.Sprintf("%s %d", msg, f.StatusCode)
	}
	if f.Detail != "" {
		msg += ": " + f.Detail
	}
	if f.Attempts > 1 {
		msg = fmt.Sprintf("%s (after %d attempts)", msg, f.Attempts)
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result is either Ok(value) or Err(failure)
type Result[T any] struct {
	value   T
	failure *Failure
}

// Ok wraps a successful value
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err builds a failed result
func Err[T any](kind Kind, detail string) Result[T] {
	return Result[T]{failure: &Failure{Kind: kind, Detail: detail}}
}

// FromFailure wraps an existing failure
func FromFailure[T any](f *Failure) Result[T] {
	return Result[T]{failure: f}
}

// IsOk reports whether the call succeeded
func (r Result[T]) IsOk() bool {
	return r.failure == nil
}

// Value returns the value; it is the zero value when the call failed
func (r Result[T]) Value() T {
	return r.value
}

// Failure returns the failure, or nil on success
func (r Result[T]) Failure() *Failure {
	return r.failure
}

// Unwrap converts the result to Go's (value, error) pair
func (r Result[T]) Unwrap() (T, error) {
	if r.failure != nil {
		return r.value, r.failure
	}
	return r.value, nil
}
