package convergence

import "time"

// Clock abstracts time so polling can be driven by a virtual
// clock in tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }
