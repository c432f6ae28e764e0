// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gomlx/sqmatrix/internal/workerspool"
	"github.com/gomlx/sqmatrix/pkg/core/partition"
	"github.com/pkg/errors"
)

// Granularity is the unit of work partitioned among the workers of a parallel addition.
type Granularity int

const (
	// Rows partitions whole rows.
	Rows Granularity = iota

	// Cells partitions the n*n cells in contiguous ranges (rows may be split between two workers).
	Cells
)

// String implements fmt.Stringer.
func (g Granularity) String() string {
	switch g {
	case Rows:
		return "rows"
	case Cells:
		return "cells"
	}
	return fmt.Sprintf("Granularity(%d)", int(g))
}

// BandOrder is the traversal order used to transpose one band of rows.
type BandOrder int

const (
	// ColumnMajor sweeps the band column by column: reads from the band stay within a few cache
	// lines per column and writes to the destination are sequential. This is the default.
	ColumnMajor BandOrder = iota

	// RowMajor sweeps the band row by row: sequential reads, strided writes.
	RowMajor
)

// String implements fmt.Stringer.
func (o BandOrder) String() string {
	switch o {
	case ColumnMajor:
		return "column"
	case RowMajor:
		return "row"
	}
	return fmt.Sprintf("BandOrder(%d)", int(o))
}

const (
	// DefaultBandSize is the number of rows per band in the banded transposes.
	DefaultBandSize = 128

	// DefaultTileSize is the side of the square tiles in the tiled in-place transpose.
	DefaultTileSize = 128
)

// Config selects the partitioning policies and traversal strategies used by an Executor.
type Config struct {
	// AddPolicy is the partitioning policy for Executor.Add when partitioning by Rows.
	AddPolicy partition.Policy

	// AddGranularity selects rows or cells for Executor.Add. Cells are always partitioned in
	// contiguous ranges.
	AddGranularity Granularity

	// MultiplyPolicy is the partitioning policy of rows for Executor.Multiply.
	MultiplyPolicy partition.Policy

	// TransposePolicy is the partitioning policy of bands for Executor.Transpose.
	TransposePolicy partition.Policy

	// NormPolicy is the partitioning policy of rows for Executor.Norm.
	NormPolicy partition.Policy

	// BandOrder is the traversal order within each band of the banded transposes.
	BandOrder BandOrder

	// BandSize is the number of rows per band. Independent of the number of threads.
	BandSize int

	// TileSize is the side of the tiles used by TransposeInPlaceTiled.
	TileSize int

	// MaxParallelism limits the number of workers running at the same time. -1 means one
	// goroutine per partition (the default), 0 runs the partitions inline one after the other.
	MaxParallelism int
}

// DefaultConfig returns the configuration used when no configuration string is given: strided
// rows for addition and multiplication, strided bands for transpose and contiguous rows for the norm.
func DefaultConfig() Config {
	return Config{
		AddPolicy:       partition.Strided,
		AddGranularity:  Rows,
		MultiplyPolicy:  partition.Strided,
		TransposePolicy: partition.Strided,
		NormPolicy:      partition.Contiguous,
		BandOrder:       ColumnMajor,
		BandSize:        DefaultBandSize,
		TileSize:        DefaultTileSize,
		MaxParallelism:  workerspool.Unlimited,
	}
}

// ErrInvalidConfig is returned (wrapped) for configuration strings or values that can't be used.
var ErrInvalidConfig = errors.New("ops: invalid configuration")

// Validate returns an error if the configuration can't be used.
func (c Config) Validate() error {
	if c.BandSize < 1 {
		return errors.Wrapf(ErrInvalidConfig, "band size must be >= 1, got %d", c.BandSize)
	}
	if c.TileSize < 1 {
		return errors.Wrapf(ErrInvalidConfig, "tile size must be >= 1, got %d", c.TileSize)
	}
	if c.MaxParallelism < workerspool.Unlimited {
		return errors.Wrapf(ErrInvalidConfig, "parallelism must be >= -1, got %d", c.MaxParallelism)
	}
	return nil
}

// ParseConfig parses a comma-separated list of "key=value" options on top of DefaultConfig.
//
// Valid options:
//
//   - "add=<contiguous|strided>": policy for Executor.Add.
//   - "add_unit=<rows|cells>": granularity for Executor.Add.
//   - "mul=<contiguous|strided>": policy for Executor.Multiply.
//   - "transpose=<contiguous|strided>": band ownership for Executor.Transpose.
//   - "norm=<contiguous|strided>": policy for Executor.Norm.
//   - "band_order=<column|row>": traversal order within a band.
//   - "band=<int>": rows per band.
//   - "tile=<int>": tile side for the tiled in-place transpose.
//   - "parallelism=<int>": maximum number of workers running concurrently, -1 for unlimited.
//
// Example: "add=contiguous,band=64,band_order=row".
func ParseConfig(config string) (Config, error) {
	c := DefaultConfig()
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return c, errors.Wrapf(ErrInvalidConfig, "option %q is not in the \"key=value\" format", part)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		var err error
		switch key {
		case "add":
			c.AddPolicy, err = partition.ParsePolicy(value)
		case "add_unit":
			switch value {
			case "rows":
				c.AddGranularity = Rows
			case "cells":
				c.AddGranularity = Cells
			default:
				err = errors.Errorf("valid values are \"rows\" or \"cells\"")
			}
		case "mul":
			c.MultiplyPolicy, err = partition.ParsePolicy(value)
		case "transpose":
			c.TransposePolicy, err = partition.ParsePolicy(value)
		case "norm":
			c.NormPolicy, err = partition.ParsePolicy(value)
		case "band_order":
			switch value {
			case "column":
				c.BandOrder = ColumnMajor
			case "row":
				c.BandOrder = RowMajor
			default:
				err = errors.Errorf("valid values are \"column\" or \"row\"")
			}
		case "band":
			c.BandSize, err = strconv.Atoi(value)
		case "tile":
			c.TileSize, err = strconv.Atoi(value)
		case "parallelism":
			c.MaxParallelism, err = strconv.Atoi(value)
		default:
			return c, errors.Wrapf(ErrInvalidConfig, "unknown option %q", key)
		}
		if err != nil {
			return c, errors.Wrapf(ErrInvalidConfig, "option %q: %v", part, err)
		}
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// String returns the configuration in the format accepted by ParseConfig.
func (c Config) String() string {
	return fmt.Sprintf("add=%s,add_unit=%s,mul=%s,transpose=%s,norm=%s,band_order=%s,band=%d,tile=%d,parallelism=%d",
		c.AddPolicy, c.AddGranularity, c.MultiplyPolicy, c.TransposePolicy, c.NormPolicy,
		c.BandOrder, c.BandSize, c.TileSize, c.MaxParallelism)
}
