package workerspool

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunAll(t *testing.T) {
	for _, parallelism := range []int{Unlimited, 0, 1, 3} {
		pool := New()
		pool.SetMaxParallelism(parallelism)
		results := make([]int, 17)
		err := pool.Run(len(results), func(worker int) error {
			runtime.Gosched()
			results[worker] = worker * 2
			return nil
		})
		require.NoError(t, err)
		for ii, v := range results {
			assert.Equal(t, ii*2, v, "parallelism=%d", parallelism)
		}
	}

	// No tasks.
	require.NoError(t, New().Run(0, func(int) error { panic("should not be called") }))
}

func TestPool_Limit(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(2)
	assert.True(t, pool.IsEnabled())
	assert.False(t, pool.IsUnlimited())

	var running, maxRunning atomic.Int32
	err := pool.Run(8, func(int) error {
		current := running.Add(1)
		for {
			prev := maxRunning.Load()
			if current <= prev || maxRunning.CompareAndSwap(prev, current) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		running.Add(-1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, maxRunning.Load(), int32(2))
}

func TestPool_Failures(t *testing.T) {
	for _, parallelism := range []int{Unlimited, 0} {
		pool := New()
		pool.SetMaxParallelism(parallelism)

		// Panics are converted to errors, and all other workers still finish.
		var finished atomic.Int32
		err := pool.Run(4, func(worker int) error {
			if worker == 2 {
				panic("boom")
			}
			finished.Add(1)
			return nil
		})
		require.ErrorIs(t, err, ErrWorkerFailed)
		assert.Contains(t, err.Error(), "boom")
		assert.Contains(t, err.Error(), "worker #2")
		assert.Equal(t, int32(3), finished.Load())

		// Returned errors and panics with error values.
		err = pool.Run(3, func(worker int) error {
			if worker == 1 {
				return errors.New("failed to dispatch")
			}
			return nil
		})
		require.ErrorIs(t, err, ErrWorkerFailed)
		err = pool.Run(3, func(worker int) error {
			if worker == 0 {
				panic(errors.New("exploded"))
			}
			return nil
		})
		require.ErrorIs(t, err, ErrWorkerFailed)
		assert.Contains(t, err.Error(), "exploded")
	}
}
