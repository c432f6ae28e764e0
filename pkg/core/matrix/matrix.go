// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package matrix implements the dense square matrix used by all the kernels in sqmatrix.
//
// A Matrix of order n owns one contiguous slice of n*n elements, laid out row-major: row i
// spans data[i*n : i*n+n]. Because the storage is contiguous, clearing a set of rows or copying
// the whole matrix are single bulk operations.
//
// A Matrix is owned by whoever created it. It can be released explicitly with Release, after
// which it reports ErrReleased on any use. Releasing twice (or releasing nil) is a no-op.
package matrix

import (
	"math"
	"unsafe"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Element is the type of each matrix entry. It matches the C "int" of the reference benchmarks.
type Element = int32

// ElementSize is the size in bytes of one Element.
const ElementSize = int(unsafe.Sizeof(Element(0)))

// MaxOrder is the largest order for which order*order elements can be addressed.
var MaxOrder = int(math.Sqrt(float64(math.MaxInt / ElementSize)))

// Matrix is a dense square matrix of Element values, stored contiguously row-major.
type Matrix struct {
	order    int
	data     []Element
	released bool
}

// New allocates a zero-initialized matrix of the given order.
//
// The allocation is all-or-nothing: it either returns a fully usable matrix or an error wrapping
// ErrAllocation (or ErrInvalidOrder for negative orders), never a partially allocated matrix.
func New(order int) (*Matrix, error) {
	if order < 0 {
		return nil, errors.Wrapf(ErrInvalidOrder, "order=%d", order)
	}
	if order > MaxOrder {
		return nil, errors.Wrapf(ErrAllocation, "order=%d exceeds the maximum addressable order %d", order, MaxOrder)
	}
	m := &Matrix{order: order}
	exception := exceptions.Try(func() {
		m.data = make([]Element, order*order)
	})
	if exception != nil {
		return nil, errors.Wrapf(ErrAllocation, "order=%d, failed to reserve %d elements", order, order*order)
	}
	return m, nil
}

// MustNew is like New, but panics on error.
func MustNew(order int) *Matrix {
	m, err := New(order)
	if err != nil {
		panic(err)
	}
	return m
}

// FromRows creates a matrix from the given rows, which must form a square.
// It is mostly useful for tests and small examples.
func FromRows(rows [][]Element) (*Matrix, error) {
	n := len(rows)
	m, err := New(n)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != n {
			return nil, errors.Wrapf(ErrInvalidOrder, "row %d has %d elements, expected %d for a square matrix", i, len(row), n)
		}
		copy(m.Row(i), row)
	}
	return m, nil
}

// Release drops the storage of the matrix. After this the matrix has order 0 and any operation
// that takes it as input returns ErrReleased.
//
// It is safe to call Release on a nil matrix or on an already released one.
func (m *Matrix) Release() {
	if m == nil {
		return
	}
	m.data = nil
	m.order = 0
	m.released = true
}

// IsReleased returns whether Release was called on the matrix.
func (m *Matrix) IsReleased() bool {
	return m != nil && m.released
}

// Check returns an error if the matrix is nil (ErrNullInput) or was released (ErrReleased).
func (m *Matrix) Check() error {
	if m == nil {
		return ErrNullInput
	}
	if m.released {
		return ErrReleased
	}
	return nil
}

// Order returns the side length n of the matrix.
func (m *Matrix) Order() int {
	return m.order
}

// Data returns the underlying contiguous storage, row-major. It is not a copy.
func (m *Matrix) Data() []Element {
	return m.data
}

// Row returns row i as a slice aliasing the matrix storage.
func (m *Matrix) Row(i int) []Element {
	n := m.order
	return m.data[i*n : i*n+n : i*n+n]
}

// Rows returns the rows [from, to) as one contiguous slice aliasing the matrix storage.
func (m *Matrix) Rows(from, to int) []Element {
	n := m.order
	return m.data[from*n : to*n : to*n]
}

// At returns the element at row i and column j.
func (m *Matrix) At(i, j int) Element {
	return m.data[i*m.order+j]
}

// Set the element at row i and column j.
func (m *Matrix) Set(i, j int, value Element) {
	m.data[i*m.order+j] = value
}

// Memory returns the number of bytes used by the matrix storage.
func (m *Matrix) Memory() uintptr {
	return uintptr(len(m.data) * ElementSize)
}

// Duplicate returns a deep copy of m, copying the storage in one bulk copy.
func Duplicate(m *Matrix) (*Matrix, error) {
	if err := m.Check(); err != nil {
		return nil, errors.WithMessage(err, "matrix.Duplicate")
	}
	dup, err := New(m.order)
	if err != nil {
		return nil, err
	}
	copy(dup.data, m.data)
	return dup, nil
}
