// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matrix

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m, err := New(3)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Order())
	assert.Len(t, m.Data(), 9)
	assert.Equal(t, uintptr(9*4), m.Memory())
	for _, v := range m.Data() {
		assert.Zero(t, v)
	}

	// Order 0 is valid.
	m, err = New(0)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Order())
	assert.Empty(t, m.Data())

	_, err = New(-1)
	require.ErrorIs(t, err, ErrInvalidOrder)

	_, err = New(MaxOrder + 1)
	require.ErrorIs(t, err, ErrAllocation)

	// Within the addressable bound, but too large for the runtime to allocate.
	_, err = New(1 << 25)
	require.ErrorIs(t, err, ErrAllocation)
	assert.NotContains(t, err.Error(), ": :")
	if MaxOrder >= 1<<25 {
		assert.Contains(t, err.Error(), "failed to reserve")
	}

	// Rows are contiguous and alias the storage.
	m = MustNew(4)
	m.Row(2)[1] = 7
	assert.Equal(t, Element(7), m.At(2, 1))
	assert.Equal(t, Element(7), m.Data()[2*4+1])
	m.Set(3, 3, 5)
	assert.Equal(t, Element(5), m.Rows(3, 4)[3])
	assert.Len(t, m.Rows(1, 3), 8)
}

func TestFromRows(t *testing.T) {
	m, err := FromRows([][]Element{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, []Element{1, 2, 3, 4}, m.Data())

	_, err = FromRows([][]Element{{1, 2}, {3}})
	require.ErrorIs(t, err, ErrInvalidOrder)
}

func TestRelease(t *testing.T) {
	m := MustNew(2)
	require.NoError(t, m.Check())
	m.Release()
	assert.True(t, m.IsReleased())
	assert.Equal(t, 0, m.Order())
	require.ErrorIs(t, m.Check(), ErrReleased)

	// Idempotent and nil-safe.
	m.Release()
	var nilMatrix *Matrix
	nilMatrix.Release()
	assert.False(t, nilMatrix.IsReleased())
	require.ErrorIs(t, nilMatrix.Check(), ErrNullInput)

	_, err := Duplicate(m)
	require.ErrorIs(t, err, ErrReleased)
	require.ErrorIs(t, Fill(m, NewFillSource(DefaultSeed)), ErrReleased)
}

func TestFill(t *testing.T) {
	m0 := MustNew(16)
	require.NoError(t, Fill(m0, NewFillSource(DefaultSeed)))
	for _, v := range m0.Data() {
		assert.GreaterOrEqual(t, v, Element(0))
		assert.Less(t, v, Element(Modulus))
	}

	// Same seed, same order: same matrix.
	m1, err := NewFilled(16, NewFillSource(DefaultSeed))
	require.NoError(t, err)
	assert.True(t, Compare(m0, m1).IsEqual())

	// A different seed almost certainly changes something in 256 values.
	m2, err := NewFilled(16, NewFillSource(DefaultSeed+1))
	require.NoError(t, err)
	assert.False(t, Compare(m0, m2).IsEqual())

	// Consecutive fills from one source continue the sequence.
	src := NewFillSource(DefaultSeed)
	a, b := MustNew(4), MustNew(4)
	require.NoError(t, Fill(a, src))
	require.NoError(t, Fill(b, src))
	ref := NewFillSource(DefaultSeed)
	for range 16 {
		ref.Next()
	}
	for _, v := range b.Data() {
		assert.Equal(t, ref.Next(), v)
	}
}

func TestDuplicate(t *testing.T) {
	m, err := NewFilled(5, NewFillSource(DefaultSeed))
	require.NoError(t, err)
	dup, err := Duplicate(m)
	require.NoError(t, err)
	assert.Equal(t, Equal, Compare(m, dup).Kind)

	// Storage is not shared.
	dup.Set(0, 0, dup.At(0, 0)+1)
	assert.Equal(t, ValueMismatch, Compare(m, dup).Kind)

	_, err = Duplicate(nil)
	require.ErrorIs(t, err, ErrNullInput)
}

func TestCompare(t *testing.T) {
	a, err := NewFilled(6, NewFillSource(DefaultSeed))
	require.NoError(t, err)
	assert.Equal(t, Comparison{Kind: Equal}, Compare(a, a))
	require.NoError(t, Compare(a, a).Err())

	b, err := Duplicate(a)
	require.NoError(t, err)
	b.Set(4, 2, 100)
	c := Compare(a, b)
	assert.Equal(t, ValueMismatch, c.Kind)
	assert.Equal(t, 4, c.Row)
	assert.Equal(t, 2, c.Col)
	assert.Equal(t, int64(a.At(4, 2)), c.A)
	assert.Equal(t, int64(100), c.B)
	assert.Contains(t, c.String(), "row 4 and column 2")
	require.ErrorIs(t, c.Err(), ErrValueMismatch)

	// Short-circuits on the first mismatch in row-major order.
	b.Set(1, 5, 100)
	c = Compare(a, b)
	assert.Equal(t, 1, c.Row)
	assert.Equal(t, 5, c.Col)

	c = Compare(a, MustNew(4))
	assert.Equal(t, OrderMismatch, c.Kind)
	assert.Equal(t, int64(6), c.A)
	assert.Equal(t, int64(4), c.B)
	require.ErrorIs(t, c.Err(), ErrOrderMismatch)

	c = Compare(a, nil)
	assert.Equal(t, NullInput, c.Kind)
	assert.True(t, errors.Is(c.Err(), ErrNullInput))

	assert.True(t, Compare(MustNew(0), MustNew(0)).IsEqual())
}

func TestFprint(t *testing.T) {
	m, err := FromRows([][]Element{{1, 2}, {30, 4}})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Fprint(&buf, m, 3))
	assert.Equal(t, "  1  2\n 30  4\n", buf.String())
	assert.Equal(t, "Matrix(order=2):\n  1  2\n 30  4\n", m.String())

	buf.Reset()
	require.NoError(t, Fprint(&buf, nil, 3))
	assert.Empty(t, buf.String())
}
