package interactor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RunAll runs independent interactors concurrently, at most limit
// at a time when limit is positive. Steps within one interactor
// still run in order. The first failure cancels the remaining
// runs and is returned. A nil interactor is rejected before any
// run starts.
func RunAll(
	ctx context.Context,
	limit int,
	interactors ...*Interactor,
) error {
	for n, i := range interactors {
		if i == nil {
			return fmt.Errorf("%w: interactor %d is nil", ErrInvalidInteractor, n)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, i := range interactors {
		g.Go(func() error {
			return i.Run(ctx)
		})
	}

	return g.Wait()
}
