package render

import (
	"context"
	"time"
)

// pollUntil checks predicate every interval until it reports true,
// the timeout elapses, or ctx is cancelled. Both the library-ready
// wait and the per-chart waits share this primitive: the rendering
// engine gives no completion signal for script-driven drawing, so
// bounded polling is the only option.
//
// Returns (true, nil) on success, (false, nil) when the timeout
// elapsed, and (false, err) on predicate or context failure.
func pollUntil(
	ctx context.Context,
	interval, timeout time.Duration,
	predicate func(context.Context) (bool, error),
) (bool, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		ok, err := predicate(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline.C:
			return false, nil
		case <-tick.C:
		}
	}
}
