// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package parallel runs a partition.Plan: one task per assignment, forked on a workerspool.Pool
// and joined before returning.
//
// Run is for kernels where every assignment writes only to its own disjoint region of the
// output, so no synchronization other than the final join is needed. Reduce is for kernels that
// accumulate: each assignment gets a private accumulator, and the accumulators are handed back
// to the caller, in assignment order, only after every worker finished.
package parallel

import (
	"github.com/gomlx/sqmatrix/internal/workerspool"
	"github.com/gomlx/sqmatrix/pkg/core/partition"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Run executes fn(assignment) for every assignment of the plan concurrently, and waits for all of
// them to finish.
//
// fn must only write to the output region owned by its assignment. If any worker fails the error
// is returned and the caller must discard whatever output the workers wrote.
func Run(pool *workerspool.Pool, plan partition.Plan, fn func(a partition.Assignment)) error {
	if plan.Workers == 0 {
		return nil
	}
	if klog.V(2).Enabled() {
		klog.Infof("parallel.Run: %s", plan)
		if err := plan.Validate(); err != nil {
			return err
		}
	}
	err := pool.Run(len(plan.Assignments), func(worker int) error {
		fn(plan.Assignments[worker])
		return nil
	})
	if err != nil {
		return errors.WithMessagef(err, "parallel.Run(%s policy, %d units, %d workers)", plan.Policy, plan.Units, plan.Workers)
	}
	return nil
}

// Reduce executes work(assignment, acc) for every assignment of the plan concurrently, each one
// with its private accumulator created by newAcc before any worker is started.
//
// It returns the accumulators in assignment order, only after all workers joined. No worker can
// observe another worker's accumulator. On failure, no accumulators are returned.
func Reduce[A any](pool *workerspool.Pool, plan partition.Plan,
	newAcc func(a partition.Assignment) A, work func(a partition.Assignment, acc A)) ([]A, error) {
	if plan.Workers == 0 {
		return nil, nil
	}
	accs := make([]A, len(plan.Assignments))
	for ii, a := range plan.Assignments {
		accs[ii] = newAcc(a)
	}
	if klog.V(2).Enabled() {
		klog.Infof("parallel.Reduce: %s", plan)
		if err := plan.Validate(); err != nil {
			return nil, err
		}
	}
	err := pool.Run(len(plan.Assignments), func(worker int) error {
		work(plan.Assignments[worker], accs[worker])
		return nil
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "parallel.Reduce(%s policy, %d units, %d workers)", plan.Policy, plan.Units, plan.Workers)
	}
	return accs, nil
}
