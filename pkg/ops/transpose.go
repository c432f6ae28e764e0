// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"github.com/gomlx/sqmatrix/pkg/core/matrix"
	"github.com/gomlx/sqmatrix/pkg/core/partition"
	"github.com/pkg/errors"
)

// Transpose returns the transpose of m, computed sequentially with the naive traversal: row-major
// reads of m and column-major writes to the result.
func Transpose(m *matrix.Matrix) (*matrix.Matrix, error) {
	if err := checkUnary("Transpose", m); err != nil {
		return nil, err
	}
	n := m.Order()
	res, err := matrix.New(n)
	if err != nil {
		return nil, err
	}
	src, dst := m.Data(), res.Data()
	for i := range n {
		for j := range n {
			dst[j*n+i] = src[i*n+j]
		}
	}
	return res, nil
}

// transposeBand writes the rows [first, last) of src (order n) as the columns [first, last) of dst.
//
// With ColumnMajor order the band is swept column by column, so that only bandSize cache lines of
// the source band and one contiguous segment of each destination row are touched at a time.
func transposeBand(dst, src []matrix.Element, n, first, last int, order BandOrder) {
	if order == RowMajor {
		for i := first; i < last; i++ {
			srcRow := src[i*n : i*n+n]
			for j, v := range srcRow {
				dst[j*n+i] = v
			}
		}
		return
	}
	for j := range n {
		dstRow := dst[j*n+first : j*n+last]
		for ii := range dstRow {
			dstRow[ii] = src[(first+ii)*n+j]
		}
	}
}

// TransposeBanded returns the transpose of m, computed sequentially in bands of bandSize rows,
// each band traversed in the given order.
func TransposeBanded(m *matrix.Matrix, bandSize int, order BandOrder) (*matrix.Matrix, error) {
	if err := checkUnary("TransposeBanded", m); err != nil {
		return nil, err
	}
	if bandSize < 1 {
		return nil, errors.Wrapf(ErrInvalidConfig, "TransposeBanded: band size must be >= 1, got %d", bandSize)
	}
	n := m.Order()
	res, err := matrix.New(n)
	if err != nil {
		return nil, err
	}
	src, dst := m.Data(), res.Data()
	for first := 0; first < n; first += bandSize {
		transposeBand(dst, src, n, first, min(first+bandSize, n), order)
	}
	return res, nil
}

// numBands returns the number of bands of bandSize rows needed to cover n rows.
func numBands(n, bandSize int) int {
	return (n + bandSize - 1) / bandSize
}

// Transpose returns the transpose of m using up to threads workers.
//
// The rows of m are grouped in bands of Config.BandSize rows, and the bands are distributed among
// the workers according to Config.TransposePolicy. Each worker transposes its bands with the
// Config.BandOrder traversal, writing only to the matching columns of the result. The number of
// workers is clamped to the number of bands.
func (e *Executor) Transpose(m *matrix.Matrix, threads int) (*matrix.Matrix, error) {
	if err := checkUnary("Executor.Transpose", m); err != nil {
		return nil, err
	}
	if err := checkThreads("Executor.Transpose", threads); err != nil {
		return nil, err
	}
	n := m.Order()
	bandSize := e.config.BandSize
	plan, err := partition.NewPlan(e.config.TransposePolicy, numBands(n, bandSize), threads)
	if err != nil {
		return nil, err
	}
	res, err := matrix.New(n)
	if err != nil {
		return nil, err
	}
	src, dst := m.Data(), res.Data()
	order := e.config.BandOrder
	err = e.run(plan, func(p partition.Assignment) {
		for band := range p.Units() {
			first := band * bandSize
			transposeBand(dst, src, n, first, min(first+bandSize, n), order)
		}
	})
	if err != nil {
		res.Release()
		return nil, err
	}
	return res, nil
}

// swap exchanges data[x] and data[y]. It works for x == y.
func swap(data []matrix.Element, x, y int) {
	data[x], data[y] = data[y], data[x]
}

// TransposeInPlace transposes m in place, swapping every element below the diagonal with its
// mirror above the diagonal.
func TransposeInPlace(m *matrix.Matrix) error {
	if err := checkUnary("TransposeInPlace", m); err != nil {
		return err
	}
	n := m.Order()
	data := m.Data()
	for i := range n {
		for j := range i {
			swap(data, j*n+i, i*n+j)
		}
	}
	return nil
}

// transposeTileInPlace transposes in place the tile of side size with top-left corner at
// (row, col).
func transposeTileInPlace(data []matrix.Element, n, row, col, size int) {
	for i := range size {
		for j := range i {
			swap(data, (row+j)*n+col+i, (row+i)*n+col+j)
		}
	}
}

// swapTiles exchanges the tile of side size at (row, col) with its diagonal mirror at (col, row).
// Tiles on the diagonal are left untouched.
func swapTiles(data []matrix.Element, n, row, col, size int) {
	if row == col {
		return
	}
	for i := range size {
		for j := range size {
			swap(data, (col+i)*n+row+j, (row+i)*n+col+j)
		}
	}
}

// TransposeInPlaceTiled transposes m in place, using square tiles of side tileSize to bound the
// working set:
//
//  1. Every full tile is transposed in place.
//  2. Every tile below the diagonal is swapped with its mirror tile above the diagonal.
//  3. The leftover rows and columns (when the order is not a multiple of tileSize) are transposed
//     with a final naive sweep.
func TransposeInPlaceTiled(m *matrix.Matrix, tileSize int) error {
	if err := checkUnary("TransposeInPlaceTiled", m); err != nil {
		return err
	}
	if tileSize < 1 {
		return errors.Wrapf(ErrInvalidConfig, "TransposeInPlaceTiled: tile size must be >= 1, got %d", tileSize)
	}
	n := m.Order()
	if n == 0 {
		return nil
	}
	data := m.Data()
	size := min(n, tileSize)
	tiled := size * (n / size) // Rows and columns covered by full tiles.

	for row := 0; row < tiled; row += size {
		for col := 0; col < tiled; col += size {
			transposeTileInPlace(data, n, row, col, size)
		}
	}
	for row := 0; row < tiled; row += size {
		for col := 0; col < row; col += size {
			swapTiles(data, n, row, col, size)
		}
	}
	for i := tiled; i < n; i++ {
		for j := range i {
			swap(data, j*n+i, i*n+j)
		}
	}
	return nil
}

// TransposeInPlaceTiled transposes m in place with the tile size of the Executor's Config.
func (e *Executor) TransposeInPlaceTiled(m *matrix.Matrix) error {
	return TransposeInPlaceTiled(m, e.config.TileSize)
}
