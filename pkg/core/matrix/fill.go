// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matrix

import (
	"math/rand/v2"
)

const (
	// DefaultSeed used by the benchmarks, so repeated runs with the same order fill equal matrices.
	DefaultSeed uint64 = 3100

	// Modulus bounds the filled values to [0, Modulus), which keeps products and sums far from
	// overflowing int32 for the orders used in benchmarks.
	Modulus = 7
)

// FillSource is a pseudo-random generator owned by the caller and used by Fill.
//
// It is not safe for concurrent use, but distinct FillSource values can be used concurrently
// to fill distinct matrices.
type FillSource struct {
	rng *rand.Rand
}

// NewFillSource returns a FillSource seeded with seed. Two sources with the same seed generate
// the same sequence of values.
func NewFillSource(seed uint64) *FillSource {
	return &FillSource{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Next returns the next value in [0, Modulus).
func (s *FillSource) Next() Element {
	return Element(s.rng.IntN(Modulus))
}

// Fill writes pseudo-random values in [0, Modulus) to every element of m, in row-major order.
func Fill(m *Matrix, src *FillSource) error {
	if err := m.Check(); err != nil {
		return err
	}
	for ii := range m.data {
		m.data[ii] = src.Next()
	}
	return nil
}

// NewFilled allocates a matrix of the given order and fills it from src.
func NewFilled(order int, src *FillSource) (*Matrix, error) {
	m, err := New(order)
	if err != nil {
		return nil, err
	}
	if err = Fill(m, src); err != nil {
		return nil, err
	}
	return m, nil
}
