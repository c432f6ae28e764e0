// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package commandline contains convenience UI tools to run and report the matrix kernels from the command line:
// settings flags, duration formatting, result tables and a progress bar over the runs.
package commandline

import (
	"os"

	"github.com/muesli/termenv"
)

// ThreadCounts returns the thread counts to benchmark for up to maxThreads: the powers of 2 smaller
// than maxThreads, followed by maxThreads itself. E.g.: 6 -> [1 2 4 6].
//
// It returns nil if maxThreads < 1.
func ThreadCounts(maxThreads int) []int {
	if maxThreads < 1 {
		return nil
	}
	var counts []int
	for t := 1; t < maxThreads; t *= 2 {
		counts = append(counts, t)
	}
	return append(counts, maxThreads)
}

// IsColorTerminal returns whether stdout is a terminal with color support.
// Rich output (progress bar, colored tables) is only used in that case.
func IsColorTerminal() bool {
	return termenv.NewOutput(os.Stdout).Profile != termenv.Ascii
}
