// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"github.com/gomlx/sqmatrix/pkg/core/matrix"
	"github.com/gomlx/sqmatrix/pkg/core/partition"
)

// Add returns a+b, computed sequentially.
//
// It returns an error wrapping matrix.ErrNullInput or matrix.ErrDimensionMismatch (checked before
// allocating the result) if the operands can't be added.
func Add(a, b *matrix.Matrix) (*matrix.Matrix, error) {
	if err := checkBinary("Add", a, b); err != nil {
		return nil, err
	}
	n := a.Order()
	res, err := matrix.New(n)
	if err != nil {
		return nil, err
	}
	aData, bData, resData := a.Data(), b.Data(), res.Data()
	for i := range n {
		for j := range n {
			resData[i*n+j] = aData[i*n+j] + bData[i*n+j]
		}
	}
	return res, nil
}

// addSlices sets dst[ii] = a[ii] + b[ii], sweeping the slices in storage order.
func addSlices(dst, a, b []matrix.Element) {
	a = a[:len(dst)]
	b = b[:len(dst)]
	for ii := range dst {
		dst[ii] = a[ii] + b[ii]
	}
}

// Add returns a+b using up to threads workers.
//
// With Rows granularity (the default) rows are distributed according to Config.AddPolicy. With
// Cells granularity the n*n cells are split in contiguous ranges, which may cut rows in the middle.
func (e *Executor) Add(a, b *matrix.Matrix, threads int) (*matrix.Matrix, error) {
	if err := checkBinary("Executor.Add", a, b); err != nil {
		return nil, err
	}
	if err := checkThreads("Executor.Add", threads); err != nil {
		return nil, err
	}
	n := a.Order()
	var plan partition.Plan
	var err error
	if e.config.AddGranularity == Cells {
		plan, err = partition.NewPlan(partition.Contiguous, n*n, threads)
	} else {
		plan, err = partition.NewPlan(e.config.AddPolicy, n, threads)
	}
	if err != nil {
		return nil, err
	}
	res, err := matrix.New(n)
	if err != nil {
		return nil, err
	}

	aData, bData, resData := a.Data(), b.Data(), res.Data()
	var fn func(p partition.Assignment)
	switch {
	case e.config.AddGranularity == Cells:
		fn = func(p partition.Assignment) {
			addSlices(resData[p.Start:p.End], aData[p.Start:p.End], bData[p.Start:p.End])
		}
	case plan.Policy == partition.Contiguous:
		fn = func(p partition.Assignment) {
			addSlices(res.Rows(p.Start, p.End), a.Rows(p.Start, p.End), b.Rows(p.Start, p.End))
		}
	default:
		fn = func(p partition.Assignment) {
			for i := range p.Units() {
				addSlices(res.Row(i), a.Row(i), b.Row(i))
			}
		}
	}
	if err = e.run(plan, fn); err != nil {
		res.Release()
		return nil, err
	}
	return res, nil
}
