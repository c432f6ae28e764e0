// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matrix

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes m row by row to w, each element right-aligned in a column of the given width.
// Nothing is written for a nil or released matrix.
func Fprint(w io.Writer, m *Matrix, width int) error {
	if m.Check() != nil {
		return nil
	}
	n := m.order
	for i := range n {
		for _, v := range m.Row(i) {
			if _, err := fmt.Fprintf(w, "%*d", width, v); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// String implements fmt.Stringer, printing the matrix with columns of width 3.
func (m *Matrix) String() string {
	if err := m.Check(); err != nil {
		return fmt.Sprintf("Matrix(%v)", err)
	}
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "Matrix(order=%d):\n", m.order)
	_ = Fprint(&sb, m, 3)
	return sb.String()
}
