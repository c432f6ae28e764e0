// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"github.com/gomlx/sqmatrix/pkg/core/matrix"
	"github.com/gomlx/sqmatrix/pkg/core/partition"
)

// Multiply returns the matrix product a×b, computed sequentially.
//
// It uses the i-k-j loop order: for a fixed row i of a, it sweeps k and then j, so the innermost
// loop reads row k of b and writes row i of the result sequentially, instead of striding down
// the columns of b as the naive i-j-k order does.
//
// Integer overflow wraps around, identically in the sequential and parallel versions.
func Multiply(a, b *matrix.Matrix) (*matrix.Matrix, error) {
	if err := checkBinary("Multiply", a, b); err != nil {
		return nil, err
	}
	n := a.Order()
	res, err := matrix.New(n)
	if err != nil {
		return nil, err
	}
	aData, bData, resData := a.Data(), b.Data(), res.Data()

	// Rows are contiguous: zero the whole result at once.
	clear(resData)
	for i := range n {
		for k := range n {
			for j := range n {
				resData[i*n+j] += aData[i*n+k] * bData[k*n+j]
			}
		}
	}
	return res, nil
}

// multiplyRow computes one row of the product: dst = aRow × b, where b is the full right-hand
// side matrix of order len(dst). dst is zeroed first.
func multiplyRow(dst, aRow, b []matrix.Element) {
	n := len(dst)
	clear(dst)
	for k, aik := range aRow[:n] {
		bRow := b[k*n : k*n+n]
		for j, bkj := range bRow {
			dst[j] += aik * bkj
		}
	}
}

// Multiply returns the matrix product a×b using up to threads workers.
//
// Rows of the result are distributed according to Config.MultiplyPolicy. Each worker zeroes and
// accumulates only the rows it owns, reading a and b concurrently with the other workers.
func (e *Executor) Multiply(a, b *matrix.Matrix, threads int) (*matrix.Matrix, error) {
	if err := checkBinary("Executor.Multiply", a, b); err != nil {
		return nil, err
	}
	if err := checkThreads("Executor.Multiply", threads); err != nil {
		return nil, err
	}
	n := a.Order()
	plan, err := partition.NewPlan(e.config.MultiplyPolicy, n, threads)
	if err != nil {
		return nil, err
	}
	res, err := matrix.New(n)
	if err != nil {
		return nil, err
	}
	bData := b.Data()
	err = e.run(plan, func(p partition.Assignment) {
		for i := range p.Units() {
			multiplyRow(res.Row(i), a.Row(i), bData)
		}
	})
	if err != nil {
		res.Release()
		return nil, err
	}
	return res, nil
}
