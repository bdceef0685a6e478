package dynamo

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Factory builds a fresh simulator. Integrators and controllers keep
// per-run scratch state, so every parallel run needs its own instance.
type Factory func() (*Simulator, error)

// Sweep runs one simulation per initial state with at most workers runs in
// flight (GOMAXPROCS when workers <= 0). Results keep the order of inits.
// The first failing run cancels the rest.
func Sweep(ctx context.Context, build Factory, inits []State, cfg Config, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(inits))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, x0 := range inits {
		g.Go(func() error {
			s, err := build()
			if err != nil {
				return fmt.Errorf("sweep run %d: %w", i, err)
			}

			runCfg := cfg
			runCfg.Seed = cfg.Seed + int64(i)

			res, err := s.Run(ctx, x0, runCfg)
			if err != nil {
				return fmt.Errorf("sweep run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
