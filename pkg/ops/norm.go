// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"math"
	"unsafe"

	"github.com/gomlx/sqmatrix/pkg/core/matrix"
	"github.com/gomlx/sqmatrix/pkg/core/parallel"
	"github.com/gomlx/sqmatrix/pkg/core/partition"
	"golang.org/x/sys/cpu"
)

// The L2,1 norm of a matrix M is the sum over its columns of the Euclidean norm of each column:
//
//	‖M‖₂,₁ = Σ_j sqrt( Σ_i M[i][j]² )
//
// Sums of squares are accumulated in float64. The square root is only taken once the sum of a
// column is complete, since it doesn't distribute over addition.

// square returns v² as a float64, computed exactly in int64.
func square(v matrix.Element) float64 {
	v64 := int64(v)
	return float64(v64 * v64)
}

// accumulateRow adds the squares of row to the per-column sums.
func accumulateRow(sums []float64, row []matrix.Element) {
	sums = sums[:len(row)]
	for j, v := range row {
		sums[j] += square(v)
	}
}

// sumOfRoots returns Σ_j sqrt(sums[j]).
func sumOfRoots(sums []float64) float64 {
	var norm float64
	for _, s := range sums {
		norm += math.Sqrt(s)
	}
	return norm
}

// NormByRow returns the L2,1 norm of m, traversing it row by row and accumulating into a
// per-column array of sums. This follows the storage layout and is the preferred sequential
// version.
//
// It returns NaN and an error wrapping matrix.ErrNullInput if m is nil.
func NormByRow(m *matrix.Matrix) (float64, error) {
	if err := checkUnary("NormByRow", m); err != nil {
		return math.NaN(), err
	}
	n := m.Order()
	sums := make([]float64, n)
	for i := range n {
		accumulateRow(sums, m.Row(i))
	}
	return sumOfRoots(sums), nil
}

// NormByColumn returns the L2,1 norm of m, traversing it column by column. It has a worse
// cache behavior than NormByRow for large matrices and is kept as a reference for comparison.
func NormByColumn(m *matrix.Matrix) (float64, error) {
	if err := checkUnary("NormByColumn", m); err != nil {
		return math.NaN(), err
	}
	n := m.Order()
	data := m.Data()
	var norm float64
	for j := range n {
		var sum float64
		for i := range n {
			sum += square(data[i*n+j])
		}
		norm += math.Sqrt(sum)
	}
	return norm, nil
}

// cacheLineSize in bytes used to separate the norm accumulators: the padding size of the
// architecture, but never less than 64.
var cacheLineSize = max(int(unsafe.Sizeof(cpu.CacheLinePad{})), 64)

// newColumnSums allocates the private per-column accumulators of the workers of Executor.Norm.
//
// They share one flat buffer, but each accumulator starts on a cache line boundary and is followed
// by padding up to the next one, so two workers never write to the same cache line.
func newColumnSums(workers, n int) [][]float64 {
	if workers == 0 || n == 0 {
		return make([][]float64, workers)
	}
	lineElems := cacheLineSize / 8
	stride := (n + lineElems - 1) / lineElems * lineElems
	buf := make([]float64, workers*stride+lineElems)

	// Skip elements until the buffer is aligned to a cache line.
	offset := 0
	if misalignment := int(uintptr(unsafe.Pointer(&buf[0])) % uintptr(cacheLineSize)); misalignment != 0 {
		offset = (cacheLineSize - misalignment) / 8
	}
	accs := make([][]float64, workers)
	for k := range accs {
		start := offset + k*stride
		accs[k] = buf[start : start+n : start+n]
	}
	return accs
}

// Norm returns the L2,1 norm of m using up to threads workers.
//
// Rows are distributed according to Config.NormPolicy. Each worker accumulates the squares of its
// rows into its own per-column sums. After all workers are joined the partial sums are combined
// column by column, and only then the square roots are taken and added.
//
// The result matches NormByRow up to floating-point rounding, since the order of the additions
// differs.
func (e *Executor) Norm(m *matrix.Matrix, threads int) (float64, error) {
	if err := checkUnary("Executor.Norm", m); err != nil {
		return math.NaN(), err
	}
	if err := checkThreads("Executor.Norm", threads); err != nil {
		return math.NaN(), err
	}
	n := m.Order()
	plan, err := partition.NewPlan(e.config.NormPolicy, n, threads)
	if err != nil {
		return math.NaN(), err
	}
	dispatch := e.wrap(func(partition.Assignment) {})
	columnSums := newColumnSums(plan.Workers, n)
	partials, err := parallel.Reduce(e.pool, plan,
		func(p partition.Assignment) []float64 {
			return columnSums[p.Worker]
		},
		func(p partition.Assignment, sums []float64) {
			dispatch(p)
			for i := range p.Units() {
				accumulateRow(sums, m.Row(i))
			}
		})
	if err != nil {
		return math.NaN(), err
	}

	// Combine: the column sums are complete only after adding all partial accumulators.
	total := make([]float64, n)
	for _, partial := range partials {
		for j, s := range partial {
			total[j] += s
		}
	}
	return sumOfRoots(total), nil
}
