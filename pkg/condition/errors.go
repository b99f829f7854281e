package condition

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpec is returned for specifiers that are neither
	// a property name nor a supported predicate. It signals a
	// programming error and must not be retried.
	ErrInvalidSpec = errors.New("invalid condition specifier")

	// ErrConditionFailed is returned when an unnamed predicate
	// returns false.
	ErrConditionFailed = errors.New("condition failed")

	// ErrUnknownProperty is returned by subjects asked for a
	// property they do not define.
	ErrUnknownProperty = errors.New("unknown property")
)

// Failure reports that a condition did not hold when checked.
// Its message is the exact text callers match against, so it
// carries no prefix or punctuation.
type Failure struct {
	// Name is the property or predicate name.
	Name string

	// Actual is the raw value observed, before negation.
	Actual bool
}

// Error returns "<name> returned <actual>".
func (f *Failure) Error() string {
	return fmt.Sprintf("%s returned %t", f.Name, f.Actual)
}

// Is lets a failed predicate match ErrConditionFailed.
func (f *Failure) Is(target error) bool {
	return target == ErrConditionFailed
}

func invalidSpec(v any) error {
	return fmt.Errorf("%w: %T", ErrInvalidSpec, v)
}
