// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gomlx/sqmatrix/pkg/core/partition"
	"github.com/gomlx/sqmatrix/pkg/ops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadCounts(t *testing.T) {
	assert.Nil(t, ThreadCounts(0))
	assert.Equal(t, []int{1}, ThreadCounts(1))
	assert.Equal(t, []int{1, 2}, ThreadCounts(2))
	assert.Equal(t, []int{1, 2, 4, 6}, ThreadCounts(6))
	assert.Equal(t, []int{1, 2, 4, 8}, ThreadCounts(8))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.23ms", FormatDuration(1234567*time.Nanosecond))
	assert.Equal(t, "2.00s", FormatDuration(2*time.Second))
	assert.Equal(t, "500.00ns", FormatDuration(500*time.Nanosecond))
	assert.Equal(t, "1m31s", FormatDuration(90*time.Second+600*time.Millisecond))
	assert.Equal(t, "2.00x", FormatSpeedup(2*time.Second, time.Second))
	assert.Equal(t, "-", FormatSpeedup(0, time.Second))
}

func TestParseConfigSettings(t *testing.T) {
	config, keys, err := ParseConfigSettings("mul=contiguous;band=64, band_order=row")
	require.NoError(t, err)
	assert.Equal(t, []string{"mul", "band", "band_order"}, keys)
	assert.Equal(t, partition.Contiguous, config.MultiplyPolicy)
	assert.Equal(t, 64, config.BandSize)
	assert.Equal(t, ops.RowMajor, config.BandOrder)

	// Settings from a file.
	filePath := filepath.Join(t.TempDir(), "settings.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("# Comment\ntile=16\n\nadd_unit=cells;parallelism=2\n"), 0o644))
	config, keys, err = ParseConfigSettings("norm=strided;file:" + filePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"norm", "tile", "add_unit", "parallelism"}, keys)
	assert.Equal(t, partition.Strided, config.NormPolicy)
	assert.Equal(t, 16, config.TileSize)
	assert.Equal(t, ops.Cells, config.AddGranularity)
	assert.Equal(t, 2, config.MaxParallelism)

	_, _, err = ParseConfigSettings("file:" + filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	_, _, err = ParseConfigSettings("unknown=1")
	require.ErrorIs(t, err, ops.ErrInvalidConfig)

	assert.Contains(t, SprintConfig(ops.DefaultConfig()), `"band": 128`)
}

func newTestReport() *Report {
	r := NewReport()
	r.Add(Result{Op: "add", Order: 100, Threads: Sequential, Wall: 2 * time.Millisecond, CPU: 2 * time.Millisecond,
		Baseline: 2 * time.Millisecond})
	r.Add(Result{Op: "add", Order: 100, Threads: 4, Wall: time.Millisecond, Baseline: 2 * time.Millisecond, Check: "ok"})
	return r
}

func TestReport(t *testing.T) {
	r := newTestReport()
	require.NotEmpty(t, r.RunID)
	assert.NotEqual(t, r.RunID, NewReport().RunID)

	assert.Equal(t, "seq", r.Results[0].ThreadsLabel())
	assert.Equal(t, "4", r.Results[1].ThreadsLabel())
	assert.Equal(t, "1.00", r.Results[0].Utilization())
	assert.Equal(t, "-", r.Results[1].Utilization())
	assert.Equal(t, "10 Mcells/s", r.Results[1].Throughput())

	table := r.Table()
	for _, want := range []string{"Op", "Speedup", "seq", "2.00x", "ok"} {
		assert.Contains(t, table, want)
	}
}

func TestReport_CSV(t *testing.T) {
	r := newTestReport()
	filePath := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, r.AppendCSV(filePath))
	require.NoError(t, r.AppendCSV(filePath))

	f, err := os.Open(filePath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5) // Header only once.
	assert.Equal(t, csvHeaders, records[0])
	assert.Equal(t, []string{r.RunID, "add", "100", "4", "1000000", "0", "2000000", "ok"}, records[2])
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 2, false)
	p.Step("add")
	p.Done()
	assert.Empty(t, buf.String())

	var nilProgress *Progress
	assert.NotPanics(t, func() { nilProgress.Step("add"); nilProgress.Done() })

	p = NewProgress(&buf, 2, true)
	p.Step("add/seq")
	p.Step("add/2")
	p.Done()
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "2/2")
	assert.NotContains(t, buf.String(), "[bold]")
}

func TestReport_PlotSpeedup(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "speedup.png")
	require.NoError(t, newTestReport().PlotSpeedup(filePath))
	info, err := os.Stat(filePath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	require.Error(t, NewReport().PlotSpeedup(filePath))
}
