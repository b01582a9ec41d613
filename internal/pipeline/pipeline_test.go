package pipeline

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityforge/cityforge/pkg/params"
	"github.com/cityforge/cityforge/pkg/solid"
)

func batch(n int) []params.Building {
	buildings := make([]params.Building, n)
	for i := range buildings {
		buildings[i].ID = strconv.Itoa(i)
	}
	return buildings
}

func TestEmitsInInputOrder(t *testing.T) {
	buildings := batch(50)

	var got []string
	err := Run(context.Background(), buildings, 8,
		func(b *params.Building) (map[string]*solid.Model, error) {
			return nil, nil
		},
		func(b *params.Building, _ map[string]*solid.Model, err error) error {
			require.NoError(t, err)
			got = append(got, b.ID)
			return nil
		})
	require.NoError(t, err)

	require.Len(t, got, 50)
	for i, id := range got {
		assert.Equal(t, strconv.Itoa(i), id)
	}
}

func TestInFlightIsBounded(t *testing.T) {
	const workers = 4
	buildings := batch(100)

	var started, emitted, peak atomic.Int64
	var mu sync.Mutex

	err := Run(context.Background(), buildings, workers,
		func(b *params.Building) (map[string]*solid.Model, error) {
			inFlight := started.Add(1) - emitted.Load()
			mu.Lock()
			if inFlight > peak.Load() {
				peak.Store(inFlight)
			}
			mu.Unlock()
			return nil, nil
		},
		func(b *params.Building, _ map[string]*solid.Model, err error) error {
			time.Sleep(time.Millisecond) // slow serializer
			emitted.Add(1)
			return nil
		})
	require.NoError(t, err)

	// at most the running assemblers plus the queued slots
	assert.LessOrEqual(t, peak.Load(), int64(2*workers+1))
}

func TestBuildErrorReachesEmit(t *testing.T) {
	buildings := batch(10)
	geomErr := errors.New("degenerate roof")

	skipped := 0
	err := Run(context.Background(), buildings, 4,
		func(b *params.Building) (map[string]*solid.Model, error) {
			if b.ID == "3" || b.ID == "7" {
				return nil, geomErr
			}
			return nil, nil
		},
		func(b *params.Building, _ map[string]*solid.Model, err error) error {
			if err != nil {
				skipped++
			}
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
}

func TestEmitErrorAbortsRun(t *testing.T) {
	buildings := batch(1000)
	sinkErr := errors.New("disk full")

	seen := 0
	err := Run(context.Background(), buildings, 4,
		func(b *params.Building) (map[string]*solid.Model, error) {
			return nil, nil
		},
		func(b *params.Building, _ map[string]*solid.Model, err error) error {
			seen++
			if seen == 5 {
				return sinkErr
			}
			return nil
		})
	require.ErrorIs(t, err, sinkErr)
	assert.Equal(t, 5, seen)
}

func TestCancellationStopsAtBuildingBoundary(t *testing.T) {
	buildings := batch(1000)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	emitted := 0
	err := Run(ctx, buildings, 2,
		func(b *params.Building) (map[string]*solid.Model, error) {
			return nil, nil
		},
		func(b *params.Building, _ map[string]*solid.Model, err error) error {
			emitted++
			if emitted == 3 {
				cancel()
			}
			return nil
		})
	require.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, emitted, 3)
	assert.Less(t, emitted, 1000)
}
