package app

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// loadAll runs every load concurrently and waits for all of them.
// A failing load does not cancel the others; their errors are joined in
// argument order.
func loadAll(ctx context.Context, loads ...func(context.Context) error) error {
	errs := make([]error, len(loads))

	var g errgroup.Group

	for i, load := range loads {
		g.Go(func() error {
			errs[i] = load(ctx)
			return nil
		})
	}

	_ = g.Wait()

	return errors.Join(errs...)
}
