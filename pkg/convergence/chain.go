package convergence

import (
	"time"

	"digital.vasic.convergence/pkg/condition"
)

// Step is one unit of pending convergence work. Timeout is the
// window for Eventually and the duration for Always.
type Step struct {
	Policy    Policy
	Assertion condition.Assertion
	Timeout   time.Duration

	// Label describes the condition in logs and events, e.g.
	// "!isLoading".
	Label string
}

// Chain is an immutable, ordered sequence of steps. The zero
// value is an empty chain.
type Chain struct {
	steps []Step
}

// NewChain creates a chain holding copies of steps.
func NewChain(steps ...Step) Chain {
	return Chain{}.Append(steps...)
}

// Append returns a new chain with steps added at the end. The
// receiver is left untouched and the two chains never share a
// backing array.
func (c Chain) Append(steps ...Step) Chain {
	if len(steps) == 0 {
		return c
	}
	next := make([]Step, len(c.steps), len(c.steps)+len(steps))
	copy(next, c.steps)
	return Chain{steps: append(next, steps...)}
}

// Len returns the number of steps.
func (c Chain) Len() int { return len(c.steps) }

// At returns the step at index i.
func (c Chain) At(i int) Step { return c.steps[i] }

// Steps returns a copy of the steps in execution order.
func (c Chain) Steps() []Step {
	out := make([]Step, len(c.steps))
	copy(out, c.steps)
	return out
}
