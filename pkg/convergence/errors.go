package convergence

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout matches every *TimeoutError.
	ErrTimeout = errors.New("convergence timed out")

	// ErrNilAssertion is returned for steps without an
	// assertion.
	ErrNilAssertion = errors.New("step has no assertion")

	// ErrUnknownPolicy is returned for steps whose policy is
	// neither Eventually nor Always.
	ErrUnknownPolicy = errors.New("unknown convergence policy")
)

// TimeoutError is returned when an Eventually step never passes
// within its window. Its message is the last failure's message,
// so a timed-out "isLoading" step reads "isLoading returned
// false".
type TimeoutError struct {
	Timeout time.Duration
	Last    error
}

// Error returns the last failure's message, or a generic timeout
// message when no check ever ran.
func (e *TimeoutError) Error() string {
	if e.Last != nil {
		return e.Last.Error()
	}
	return fmt.Sprintf("convergence exceeded the %s timeout", e.Timeout)
}

// Unwrap returns the last failure.
func (e *TimeoutError) Unwrap() error { return e.Last }

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
