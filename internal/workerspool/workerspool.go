// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool dispatches a fixed set of tasks (one per partition of a parallel call) to
// goroutines and joins them all before returning.
//
// It is a fork-join construct, not a persistent pool: goroutines are spawned per call and all of
// them are awaited exactly once, even when one of them fails.
package workerspool

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// ErrWorkerFailed is returned (wrapped) by Pool.Run when a task panicked or returned an error.
var ErrWorkerFailed = errors.New("workerspool: worker failed")

// Unlimited parallelism: every task gets its own goroutine.
const Unlimited = -1

// Pool holds the parallelism configuration used to run tasks.
//
// The zero value is not usable, create it with New.
type Pool struct {
	// maxParallelism is the limit of tasks running concurrently.
	maxParallelism int
}

// New returns a new Pool with unlimited parallelism: Run starts one goroutine per task.
func New() *Pool {
	return &Pool{maxParallelism: Unlimited}
}

// IsEnabled returns whether parallelism is enabled (maxParallelism is != 0)
func (w *Pool) IsEnabled() bool {
	return w.maxParallelism != 0
}

// IsUnlimited returns whether parallelism is unlimited (maxParallelism < 0)
func (w *Pool) IsUnlimited() bool {
	return w.maxParallelism < 0
}

// MaxParallelism is the limit on the number of tasks running at the same time.
// If set to 0 parallelism is disabled and tasks run inline, one after the other.
// If set to -1 (Unlimited) every task runs in its own goroutine.
func (w *Pool) MaxParallelism() int {
	return w.maxParallelism
}

// SetMaxParallelism sets the maxParallelism.
//
// It must not be changed while Run is executing.
func (w *Pool) SetMaxParallelism(maxParallelism int) {
	w.maxParallelism = maxParallelism
}

// Run executes task(0), ..., task(numTasks-1) and blocks until all of them have finished.
//
// A task that returns an error or panics marks the call as failed: the first failure is returned
// wrapped with ErrWorkerFailed. The remaining tasks still run to completion, since there is no
// cancellation. Any writes made by tasks are visible to the caller once Run returns.
func (w *Pool) Run(numTasks int, task func(worker int) error) error {
	if numTasks <= 0 {
		return nil
	}
	if !w.IsEnabled() {
		var firstErr error
		for worker := range numTasks {
			if err := runTask(worker, task); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	var g errgroup.Group
	if !w.IsUnlimited() {
		g.SetLimit(w.maxParallelism)
	}
	for worker := range numTasks {
		if klog.V(3).Enabled() {
			klog.Infof("workerspool: dispatching worker %d/%d", worker, numTasks)
		}
		g.Go(func() error {
			return runTask(worker, task)
		})
	}
	return g.Wait()
}

// runTask runs one task converting panics and errors into an ErrWorkerFailed.
func runTask(worker int, task func(worker int) error) (err error) {
	exception := exceptions.Try(func() {
		err = task(worker)
	})
	if exception != nil {
		if e, ok := exception.(error); ok {
			err = e
		} else {
			err = errors.New(fmt.Sprint(exception))
		}
	}
	if err != nil {
		return errors.Wrapf(ErrWorkerFailed, "worker #%d: %v", worker, err)
	}
	return nil
}
