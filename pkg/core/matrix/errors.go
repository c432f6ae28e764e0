// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matrix

import "github.com/pkg/errors"

// Sentinel errors returned (usually wrapped with context) by this package and by the kernels in
// package ops. Match them with errors.Is.
var (
	// ErrInvalidOrder is returned when a negative or non-square order is requested.
	ErrInvalidOrder = errors.New("matrix: invalid order")

	// ErrAllocation is returned when the storage for a matrix could not be reserved.
	ErrAllocation = errors.New("matrix: allocation failed")

	// ErrNullInput is returned when a nil matrix is given where one is required.
	ErrNullInput = errors.New("matrix: nil matrix")

	// ErrReleased is returned when a matrix is used after Release.
	ErrReleased = errors.New("matrix: matrix was released")

	// ErrDimensionMismatch is returned when the operands of a binary operation have different orders.
	ErrDimensionMismatch = errors.New("matrix: operands have different orders")

	// ErrOrderMismatch is the error form of a Comparison of matrices with different orders.
	ErrOrderMismatch = errors.New("matrix: compared matrices have different orders")

	// ErrValueMismatch is the error form of a Comparison that found a differing element.
	ErrValueMismatch = errors.New("matrix: compared matrices differ")
)
