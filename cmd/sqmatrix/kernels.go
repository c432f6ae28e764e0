// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"math"

	"github.com/gomlx/sqmatrix/pkg/core/matrix"
	"github.com/gomlx/sqmatrix/pkg/ops"
	"github.com/pkg/errors"
)

// output of a kernel: either a matrix or a norm.
type output struct {
	m    *matrix.Matrix
	norm float64
}

func (o output) release() {
	o.m.Release()
}

// check compares o against the sequential output, and returns "ok" or a description of the first mismatch.
func (o output) check(want output) (string, bool) {
	if want.m == nil {
		if math.Abs(o.norm-want.norm) <= normTolerance*math.Max(1, math.Abs(want.norm)) {
			return "ok", true
		}
		return fmt.Sprintf("norm %g vs %g", o.norm, want.norm), false
	}
	c := matrix.Compare(want.m, o.m)
	if c.IsEqual() {
		return "ok", true
	}
	return c.String(), false
}

const normTolerance = 1e-9

// kernel describes one operation as run by the command line: its sequential version and the
// parallel version (or variant) that is verified against it.
type kernel struct {
	name   string
	inputs int

	// inPlace kernels modify their input, so they are given a fresh copy on each run.
	inPlace bool

	// variant is set for kernels whose parallel version doesn't take a number of threads:
	// it is run only once, under this name.
	variant string

	sequential func(in []*matrix.Matrix) (output, error)
	parallel   func(exec *ops.Executor, in []*matrix.Matrix, threads int) (output, error)
}

func matrixOutput(m *matrix.Matrix, err error) (output, error) { return output{m: m}, err }
func normOutput(norm float64, err error) (output, error)       { return output{norm: norm}, err }

var kernels = []kernel{
	{
		name:       "add",
		inputs:     2,
		sequential: func(in []*matrix.Matrix) (output, error) { return matrixOutput(ops.Add(in[0], in[1])) },
		parallel: func(exec *ops.Executor, in []*matrix.Matrix, threads int) (output, error) {
			return matrixOutput(exec.Add(in[0], in[1], threads))
		},
	},
	{
		name:       "mul",
		inputs:     2,
		sequential: func(in []*matrix.Matrix) (output, error) { return matrixOutput(ops.Multiply(in[0], in[1])) },
		parallel: func(exec *ops.Executor, in []*matrix.Matrix, threads int) (output, error) {
			return matrixOutput(exec.Multiply(in[0], in[1], threads))
		},
	},
	{
		name:       "transpose",
		inputs:     1,
		sequential: func(in []*matrix.Matrix) (output, error) { return matrixOutput(ops.Transpose(in[0])) },
		parallel: func(exec *ops.Executor, in []*matrix.Matrix, threads int) (output, error) {
			return matrixOutput(exec.Transpose(in[0], threads))
		},
	},
	{
		name:    "transpose_inplace",
		inputs:  1,
		inPlace: true,
		variant: "tiled",
		sequential: func(in []*matrix.Matrix) (output, error) {
			return output{m: in[0]}, ops.TransposeInPlace(in[0])
		},
		parallel: func(exec *ops.Executor, in []*matrix.Matrix, _ int) (output, error) {
			return output{m: in[0]}, exec.TransposeInPlaceTiled(in[0])
		},
	},
	{
		name:       "norm",
		inputs:     1,
		sequential: func(in []*matrix.Matrix) (output, error) { return normOutput(ops.NormByRow(in[0])) },
		parallel: func(exec *ops.Executor, in []*matrix.Matrix, threads int) (output, error) {
			return normOutput(exec.Norm(in[0], threads))
		},
	},
}

// selectKernels returns the kernels for the -op flag value: a kernel name or "all".
func selectKernels(op string) ([]kernel, error) {
	if op == "all" {
		return kernels, nil
	}
	for _, k := range kernels {
		if k.name == op {
			return []kernel{k}, nil
		}
	}
	names := make([]string, 0, len(kernels)+1)
	for _, k := range kernels {
		names = append(names, k.name)
	}
	return nil, errors.Errorf("unknown -op=%q, valid values are %q or \"all\"", op, names)
}

// numRuns returns the number of timed runs of the kernel for the given thread counts.
func (k kernel) numRuns(threadCounts []int) int {
	if k.variant != "" {
		return 2
	}
	return 1 + len(threadCounts)
}
