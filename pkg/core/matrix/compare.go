// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matrix

import (
	"fmt"

	"github.com/pkg/errors"
)

// ComparisonKind enumerates the outcomes of Compare.
type ComparisonKind int

const (
	// Equal means both matrices have the same order and elements.
	Equal ComparisonKind = iota

	// OrderMismatch means the matrices have different orders.
	OrderMismatch

	// ValueMismatch means an element differs; the Comparison holds its coordinates and values.
	ValueMismatch

	// NullInput means one of the matrices was nil or released.
	NullInput
)

// String implements fmt.Stringer.
func (k ComparisonKind) String() string {
	switch k {
	case Equal:
		return "Equal"
	case OrderMismatch:
		return "OrderMismatch"
	case ValueMismatch:
		return "ValueMismatch"
	case NullInput:
		return "NullInput"
	}
	return fmt.Sprintf("ComparisonKind(%d)", int(k))
}

// Comparison is the result of Compare.
//
// For ValueMismatch, Row and Col hold the coordinates of the first differing element (in row-major
// order) and A and B the values in each matrix. For OrderMismatch, A and B hold the orders.
type Comparison struct {
	Kind     ComparisonKind
	Row, Col int
	A, B     int64
}

// IsEqual returns whether the comparison found the matrices equal.
func (c Comparison) IsEqual() bool { return c.Kind == Equal }

// String returns a human-readable description of the comparison.
func (c Comparison) String() string {
	switch c.Kind {
	case OrderMismatch:
		return fmt.Sprintf("Order mismatch: %d vs %d", c.A, c.B)
	case ValueMismatch:
		return fmt.Sprintf("Mismatch found for row %d and column %d: %d vs %d", c.Row, c.Col, c.A, c.B)
	}
	return c.Kind.String()
}

// Err converts a non-equal comparison into an error, or returns nil if the matrices are equal.
func (c Comparison) Err() error {
	switch c.Kind {
	case Equal:
		return nil
	case OrderMismatch:
		return errors.Wrapf(ErrOrderMismatch, "%d vs %d", c.A, c.B)
	case ValueMismatch:
		return errors.Wrapf(ErrValueMismatch, "row %d, column %d: %d vs %d", c.Row, c.Col, c.A, c.B)
	}
	return ErrNullInput
}

// Compare compares a and b element-wise and stops at the first mismatch.
func Compare(a, b *Matrix) Comparison {
	if a.Check() != nil || b.Check() != nil {
		return Comparison{Kind: NullInput}
	}
	if a.order != b.order {
		return Comparison{Kind: OrderMismatch, A: int64(a.order), B: int64(b.order)}
	}
	n := a.order
	for ii, va := range a.data {
		if vb := b.data[ii]; va != vb {
			return Comparison{Kind: ValueMismatch, Row: ii / n, Col: ii % n, A: int64(va), B: int64(vb)}
		}
	}
	return Comparison{Kind: Equal}
}
