package middlewares

import (
	"errors"
	"fmt"
	"time"
)

// PanicError represents a recovered panic.
type PanicError struct {
	Value any    // The panic value
	Stack []byte // Stack trace (nil if disabled)
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// TimeoutError is the cause attached to the envelope error of a request
// that ran past its deadline.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

// RateLimitError is the cause attached when a caller exceeds its request budget.
type RateLimitError struct {
	Key string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s", e.Key)
}

// IsPanicError returns true if the error chain contains a PanicError.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// IsTimeoutError returns true if the error chain contains a TimeoutError.
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsRateLimitError returns true if the error chain contains a RateLimitError.
func IsRateLimitError(err error) bool {
	var re *RateLimitError
	return errors.As(err, &re)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// AsTimeoutError extracts the TimeoutError from an error if present.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
