package interactor

import (
	"time"

	"digital.vasic.convergence/pkg/condition"
	"digital.vasic.convergence/pkg/convergence"
)

// Condition is a convergence declared once and applied to many
// interactors. The specifier is parsed when the Condition is
// created and the default timeout is fixed from then on.
type Condition struct {
	policy         convergence.Policy
	spec           condition.Spec
	err            error
	defaultTimeout time.Duration
	hasDefault     bool
}

// When declares a condition that waits for spec to hold within
// the interactor's ambient timeout.
func When(spec any) Condition {
	s, err := parseSpec(spec)
	return Condition{
		policy: convergence.Eventually,
		spec:   s,
		err:    err,
	}
}

// Always declares a condition that requires spec to hold for a
// duration: the timeout passed at call time, else defaultTimeout,
// else the interactor's ambient timeout.
func Always(spec any, defaultTimeout ...time.Duration) Condition {
	s, err := parseSpec(spec)
	c := Condition{
		policy: convergence.Always,
		spec:   s,
		err:    err,
	}
	if len(defaultTimeout) > 0 {
		c.defaultTimeout = defaultTimeout[0]
		c.hasDefault = true
	}
	return c
}

// Policy returns the convergence policy.
func (c Condition) Policy() convergence.Policy { return c.policy }

// Spec returns the parsed specifier, or nil if it was invalid.
func (c Condition) Spec() condition.Spec { return c.spec }

// Err returns the error from parsing the specifier.
func (c Condition) Err() error { return c.err }

// DefaultTimeout returns the declared default and whether one
// was given.
func (c Condition) DefaultTimeout() (time.Duration, bool) {
	return c.defaultTimeout, c.hasDefault
}

// Apply behaves as i.When(spec) or i.Always(spec, timeout), with
// timeout taken from the call, the default, or the ambient
// timeout, in that order. When conditions ignore timeout.
func (c Condition) Apply(i *Interactor, timeout ...time.Duration) *Interactor {
	if c.policy == convergence.Eventually {
		return i.converge(c.policy, c.spec, c.err, i.AmbientTimeout())
	}

	d := i.AmbientTimeout()
	switch {
	case len(timeout) > 0:
		d = timeout[0]
	case c.hasDefault:
		d = c.defaultTimeout
	}
	return i.converge(c.policy, c.spec, c.err, d)
}
