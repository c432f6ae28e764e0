// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/sqmatrix/pkg/support/fsutil"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Sequential is the value of Result.Threads for the sequential version of an operation.
const Sequential = 0

// Result of one timed run of an operation.
type Result struct {
	Op      string
	Order   int
	Threads int

	// Wall and CPU times of the run. CPU is 0 where not available.
	Wall, CPU time.Duration

	// Baseline is the wall time of the sequential version of Op, used for the speedup.
	Baseline time.Duration

	// Check is the outcome of the verification against the sequential version: empty if not verified.
	Check string
}

// ThreadsLabel returns "seq" for the sequential run, or the number of threads.
func (r Result) ThreadsLabel() string {
	if r.Threads == Sequential {
		return "seq"
	}
	return strconv.Itoa(r.Threads)
}

// Throughput returns the number of matrix cells processed per second, formatted with SI units.
func (r Result) Throughput() string {
	if r.Wall <= 0 {
		return "-"
	}
	cells := float64(r.Order) * float64(r.Order)
	return humanize.SIWithDigits(cells/r.Wall.Seconds(), 2, "cells/s")
}

// Utilization returns the CPU/wall time ratio: close to the number of threads with perfect scaling.
func (r Result) Utilization() string {
	if r.Wall <= 0 || r.CPU <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", r.CPU.Seconds()/r.Wall.Seconds())
}

// Report collects the results of one run of the command line tool.
type Report struct {
	// RunID identifies the run in the CSV output.
	RunID   string
	Results []Result
}

// NewReport creates an empty report with a new random RunID.
func NewReport() *Report {
	return &Report{RunID: uuid.NewString()}
}

// Add appends a result.
func (r *Report) Add(result Result) {
	r.Results = append(r.Results, result)
}

var (
	normalStyle       = lipgloss.NewStyle().Padding(0, 1)
	rightAlignedStyle = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
	headerStyle       = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableBorderColor  = "#705090"
)

var reportHeaders = []string{"Op", "Threads", "Wall", "CPU", "CPU/Wall", "Speedup", "Throughput", "Check"}

// Table renders the results as a lipgloss table.
func (r *Report) Table() string {
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tableBorderColor))).
		Headers(reportHeaders...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == lgtable.HeaderRow:
				return headerStyle
			case col == 0 || col == len(reportHeaders)-1:
				return normalStyle
			}
			return rightAlignedStyle
		})
	for _, result := range r.Results {
		check := result.Check
		if check == "" {
			check = "-"
		}
		cpu := "-"
		if result.CPU > 0 {
			cpu = FormatDuration(result.CPU)
		}
		table.Row(result.Op, result.ThreadsLabel(), FormatDuration(result.Wall), cpu, result.Utilization(),
			FormatSpeedup(result.Baseline, result.Wall), result.Throughput(), check)
	}
	return table.String()
}

var csvHeaders = []string{"run_id", "op", "order", "threads", "wall_ns", "cpu_ns", "baseline_ns", "check"}

// WriteCSV writes the results as CSV records, preceded by the header if withHeader is set.
func (r *Report) WriteCSV(w io.Writer, withHeader bool) error {
	writer := csv.NewWriter(w)
	if withHeader {
		if err := writer.Write(csvHeaders); err != nil {
			return errors.Wrap(err, "failed to write CSV header")
		}
	}
	for _, result := range r.Results {
		record := []string{
			r.RunID, result.Op, strconv.Itoa(result.Order), strconv.Itoa(result.Threads),
			strconv.FormatInt(result.Wall.Nanoseconds(), 10),
			strconv.FormatInt(result.CPU.Nanoseconds(), 10),
			strconv.FormatInt(result.Baseline.Nanoseconds(), 10),
			result.Check,
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "failed to write CSV record for %s", result.Op)
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "failed to flush CSV records")
}

// AppendCSV appends the results to the CSV file in filePath, creating it (with a header) if it doesn't exist.
func (r *Report) AppendCSV(filePath string) error {
	filePath, err := fsutil.ReplaceTilde(filePath)
	if err != nil {
		return err
	}
	exists, err := fsutil.FileExists(filePath)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open CSV file %q", filePath)
	}
	if err = r.WriteCSV(f, !exists); err != nil {
		_ = f.Close()
		return errors.WithMessagef(err, "writing to %q", filePath)
	}
	return errors.Wrapf(f.Close(), "failed to close CSV file %q", filePath)
}
