// Package convergence composes assertions into immutable chains
// of polling steps and runs them. A step either waits for its
// assertion to pass (Eventually) or requires it to keep passing
// for a whole window (Always).
package convergence

import (
	"fmt"
	"strings"
)

// Policy decides how a step's assertion is polled.
type Policy int

const (
	// Eventually polls until the assertion passes or the step
	// timeout elapses.
	Eventually Policy = iota
	// Always polls for the whole step duration and fails on the
	// first failing check.
	Always
)

// String returns the lower-case policy name used in logs and
// metric labels.
func (p Policy) String() string {
	switch p {
	case Eventually:
		return "eventually"
	case Always:
		return "always"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy converts "eventually"/"when" or "always" into a
// Policy.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(name) {
	case "eventually", "when":
		return Eventually, nil
	case "always":
		return Always, nil
	default:
		return Eventually, fmt.Errorf("unknown convergence policy: %s", name)
	}
}
