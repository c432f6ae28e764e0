// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package timer measures wall-clock and process CPU time, to compare how well parallel kernels
// use the available cores: with perfect scaling the CPU time stays constant while the wall-clock
// time shrinks with the number of threads.
package timer

import "time"

// Timer measures the wall-clock and CPU time elapsed since it was started.
type Timer struct {
	wallStart time.Time
	cpuStart  time.Duration
}

// Start returns a new running Timer.
func Start() *Timer {
	return &Timer{wallStart: time.Now(), cpuStart: processCPUTime()}
}

// Restart resets the start of the timer to now.
func (t *Timer) Restart() {
	t.wallStart = time.Now()
	t.cpuStart = processCPUTime()
}

// Elapsed returns the wall-clock and the CPU time (user+system, summed over all threads of the
// process) elapsed since the timer was started.
//
// The CPU time is 0 on platforms where it is not available.
func (t *Timer) Elapsed() (wall, cpu time.Duration) {
	wall = time.Since(t.wallStart)
	cpu = processCPUTime() - t.cpuStart
	return
}

// Measure runs fn and returns its wall-clock and CPU times.
func Measure(fn func()) (wall, cpu time.Duration) {
	t := Start()
	fn()
	return t.Elapsed()
}
