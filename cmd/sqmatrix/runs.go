// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"time"

	"github.com/gomlx/sqmatrix/pkg/core/matrix"
	"github.com/gomlx/sqmatrix/pkg/ops"
	"github.com/gomlx/sqmatrix/pkg/support/timer"
	"github.com/gomlx/sqmatrix/ui/commandline"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

// runKernel times the sequential version of k and then its parallel version for each thread count,
// adding the results to report. It returns false if any parallel result differs from the sequential one.
func runKernel(exec *ops.Executor, k kernel, threadCounts []int, report *commandline.Report,
	progress *commandline.Progress) bool {
	order := *flagOrder
	src := matrix.NewFillSource(*flagSeed)
	inputs := make([]*matrix.Matrix, k.inputs)
	for ii := range inputs {
		inputs[ii] = must.M1(matrix.NewFilled(order, src))
	}
	defer func() {
		for _, m := range inputs {
			m.Release()
		}
	}()
	if *flagPrint {
		for ii, m := range inputs {
			fmt.Printf("%s input #%d:\n%s", k.name, ii, m)
		}
	}

	// Sequential baseline.
	want, wall, cpuTime := timeRun(k.inPlace, inputs, k.sequential)
	defer want.release()
	if *flagPrint {
		if want.m != nil {
			fmt.Printf("%s result:\n%s", k.name, want.m)
		} else {
			fmt.Printf("%s result: %g\n", k.name, want.norm)
		}
	}
	report.Add(commandline.Result{Op: k.name, Order: order, Threads: commandline.Sequential,
		Wall: wall, CPU: cpuTime, Baseline: wall})
	progress.Step(fmt.Sprintf("%s/seq", k.name))
	baseline := wall

	allOk := true
	runParallel := func(name string, threads int) {
		got, wall, cpuTime := timeRun(k.inPlace, inputs, func(in []*matrix.Matrix) (output, error) {
			return k.parallel(exec, in, threads)
		})
		defer got.release()
		result := commandline.Result{Op: name, Order: order, Threads: threads,
			Wall: wall, CPU: cpuTime, Baseline: baseline}
		if *flagVerify {
			var ok bool
			result.Check, ok = got.check(want)
			if !ok {
				klog.Errorf("%s with %d threads: %s", name, threads, result.Check)
				allOk = false
			}
		}
		report.Add(result)
		progress.Step(fmt.Sprintf("%s/%d", name, threads))
	}
	if k.variant != "" {
		runParallel(fmt.Sprintf("%s(%s)", k.name, k.variant), 1)
		return allOk
	}
	for _, threads := range threadCounts {
		runParallel(k.name, threads)
	}
	return allOk
}

// timeRun runs fn on the inputs, or on a copy of them for in-place kernels, and returns its output
// with the wall-clock and CPU times. Failures are fatal.
func timeRun(inPlace bool, inputs []*matrix.Matrix, fn func(in []*matrix.Matrix) (output, error)) (
	out output, wall, cpu time.Duration) {
	if inPlace {
		copies := make([]*matrix.Matrix, len(inputs))
		for ii, m := range inputs {
			copies[ii] = must.M1(matrix.Duplicate(m))
		}
		inputs = copies
	}
	var err error
	wall, cpu = timer.Measure(func() {
		out, err = fn(inputs)
	})
	if err != nil {
		klog.Fatalf("Failed: %+v", err)
	}
	return
}
