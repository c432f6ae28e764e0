// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ops implements the square-matrix kernels: addition, multiplication, transpose and the
// L2,1 norm.
//
// The package-level functions (Add, Multiply, Transpose, TransposeBanded, TransposeInPlace,
// TransposeInPlaceTiled, NormByRow, NormByColumn) are the sequential reference implementations.
//
// The Executor methods are the multi-threaded versions: the work is statically partitioned with
// package partition, each partition is run in its own goroutine and the call returns only once
// all of them are done. Workers write to disjoint regions of the result, so no locks are used.
// The norm accumulates per-worker partial column sums that are combined after the join.
//
// The strategies used by an Executor are selected with a Config, usually parsed from a string:
//
//	exec, err := ops.NewWithConfig("add=contiguous,band=64")
//	sum, err := exec.Add(a, b, runtime.NumCPU())
package ops

import (
	"os"

	"github.com/gomlx/sqmatrix/internal/workerspool"
	"github.com/gomlx/sqmatrix/pkg/core/matrix"
	"github.com/gomlx/sqmatrix/pkg/core/parallel"
	"github.com/gomlx/sqmatrix/pkg/core/partition"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ConfigEnvVar is the environment variable with the configuration used by New.
//
// See ParseConfig for the format.
const ConfigEnvVar = "SQMATRIX_CONFIG"

// DefaultConfigString is used by New if ConfigEnvVar is not set.
var DefaultConfigString string

// Executor runs the multi-threaded kernels according to its Config.
//
// It holds no per-call state, and it is safe to use it concurrently from multiple goroutines.
type Executor struct {
	config Config
	pool   *workerspool.Pool

	// onDispatch, if set, is called by every worker before running its assignment.
	onDispatch func(a partition.Assignment)
}

// New returns an Executor configured by $SQMATRIX_CONFIG if set, otherwise by DefaultConfigString.
func New() (*Executor, error) {
	config, found := os.LookupEnv(ConfigEnvVar)
	if !found {
		config = DefaultConfigString
	}
	return NewWithConfig(config)
}

// NewWithConfig returns an Executor for the given configuration string. See ParseConfig.
func NewWithConfig(config string) (*Executor, error) {
	c, err := ParseConfig(config)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(c)
}

// NewFromConfig returns an Executor for the given Config.
func NewFromConfig(c Config) (*Executor, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	e := &Executor{config: c, pool: workerspool.New()}
	e.pool.SetMaxParallelism(c.MaxParallelism)
	klog.V(1).Infof("sqmatrix executor configuration: %s", c)
	return e, nil
}

// MustNew is like NewWithConfig, but panics on error.
func MustNew(config string) *Executor {
	e, err := NewWithConfig(config)
	if err != nil {
		panic(err)
	}
	return e
}

// Config returns the configuration of the Executor.
func (e *Executor) Config() Config {
	return e.config
}

// run executes fn on every assignment of plan, in parallel.
func (e *Executor) run(plan partition.Plan, fn func(a partition.Assignment)) error {
	fn = e.wrap(fn)
	return parallel.Run(e.pool, plan, fn)
}

// wrap fn with the onDispatch hook, if one is set.
func (e *Executor) wrap(fn func(a partition.Assignment)) func(a partition.Assignment) {
	if e.onDispatch == nil {
		return fn
	}
	return func(a partition.Assignment) {
		e.onDispatch(a)
		fn(a)
	}
}

// checkUnary validates the input of a unary operation.
func checkUnary(op string, m *matrix.Matrix) error {
	if err := m.Check(); err != nil {
		return errors.WithMessage(err, op)
	}
	return nil
}

// checkBinary validates the inputs of a binary operation, before anything is allocated.
func checkBinary(op string, a, b *matrix.Matrix) error {
	if err := checkUnary(op, a); err != nil {
		return err
	}
	if err := checkUnary(op, b); err != nil {
		return err
	}
	if a.Order() != b.Order() {
		return errors.Wrapf(matrix.ErrDimensionMismatch, "%s: orders %d and %d", op, a.Order(), b.Order())
	}
	return nil
}

// checkThreads validates the requested number of threads.
func checkThreads(op string, threads int) error {
	if threads < 1 {
		return errors.Wrapf(partition.ErrInvalidThreads, "%s: threads=%d", op, threads)
	}
	return nil
}
