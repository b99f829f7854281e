package convergence

import "time"

// RunInfo identifies one execution of a chain.
type RunInfo struct {
	// ID is unique per Run call.
	ID string

	// Name describes what the chain runs against, usually the
	// interactor class and scope.
	Name string

	// Steps is the chain length.
	Steps int

	// Started is when the run began, per the runner's clock.
	Started time.Time
}

// Observer receives run and step lifecycle callbacks. Calls are
// made synchronously from the goroutine running the chain, in
// order.
type Observer interface {
	RunStarted(run RunInfo)
	StepStarted(run RunInfo, index int, step Step)
	StepFinished(run RunInfo, index int, step Step, report Report, err error)
	RunFinished(run RunInfo, elapsed time.Duration, err error)
}
