// Package pipeline runs per-building assembly on parallel workers
// while keeping serialization sequential and in input order. The
// number of buildings in flight is capped, which bounds peak memory to
// a few buildings' geometry regardless of batch size.
package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cityforge/cityforge/pkg/params"
	"github.com/cityforge/cityforge/pkg/solid"
)

// BuildFunc assembles every representation of one building.
type BuildFunc func(*params.Building) (map[string]*solid.Model, error)

// EmitFunc consumes one building's results in input order. A build
// failure is passed through in err so the caller can decide to skip
// the building; returning a non-nil error aborts the whole run.
type EmitFunc func(b *params.Building, models map[string]*solid.Model, err error) error

// Run processes the buildings with up to workers parallel assemblers.
// Emission order is the input order. Cancellation is honored at
// building boundaries: buildings already handed to emit stay written.
func Run(ctx context.Context, buildings []params.Building, workers int, build BuildFunc, emit EmitFunc) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	type result struct {
		b      *params.Building
		models map[string]*solid.Model
		err    error
	}

	// queue carries one slot per dispatched building, in order. Its
	// capacity is the backpressure point: the dispatcher stalls when
	// the serializer falls behind.
	queue := make(chan chan result, workers)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(queue)
		assemblers, actx := errgroup.WithContext(gctx)
		assemblers.SetLimit(workers)
		for i := range buildings {
			b := &buildings[i]
			slot := make(chan result, 1)
			select {
			case queue <- slot:
			case <-actx.Done():
				return context.Cause(actx)
			}
			assemblers.Go(func() error {
				models, err := build(b)
				slot <- result{b: b, models: models, err: err}
				return nil
			})
		}
		return assemblers.Wait()
	})

	g.Go(func() error {
		for slot := range queue {
			var r result
			select {
			case r = <-slot:
			case <-gctx.Done():
				return context.Cause(gctx)
			}
			if err := emit(r.b, r.models, r.err); err != nil {
				return err
			}
		}
		return nil
	})

	return g.Wait()
}
