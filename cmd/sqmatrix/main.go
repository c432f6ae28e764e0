// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// sqmatrix runs the square matrix kernels sequentially and in parallel with increasing thread
// counts (1, 2, 4, ..., -threads), verifies the parallel results against the sequential ones,
// and reports the wall-clock and CPU times.
//
// Example:
//
//	sqmatrix -op=mul -order=1024 -threads=8 -config="mul=contiguous"
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/sqmatrix/pkg/core/matrix"
	"github.com/gomlx/sqmatrix/pkg/ops"
	"github.com/gomlx/sqmatrix/ui/commandline"
	"github.com/janpfeifer/must"
	"golang.org/x/sys/cpu"
	"k8s.io/klog/v2"
)

var (
	flagOp       = flag.String("op", "all", "Operation to run: add, mul, transpose, transpose_inplace, norm or all.")
	flagOrder    = flag.Int("order", 6, "Order (number of rows and columns) of the square matrices.")
	flagThreads  = flag.Int("threads", 2, "Maximum number of threads: runs are done with 1, 2, 4, ... up to this value.")
	flagSeed     = flag.Uint64("seed", matrix.DefaultSeed, "Seed used to fill the input matrices.")
	flagPrint    = flag.Bool("print", false, "Print the input matrices and the sequential result.")
	flagVerify   = flag.Bool("verify", true, "Compare the results of the parallel versions against the sequential ones.")
	flagCSV      = flag.String("csv", "", "If set, append the results to this CSV file, tagged with a unique run id.")
	flagPlot     = flag.String("plot", "", "If set, save a plot of the speedups to this file (\".png\" or \".svg\").")
	flagProgress = flag.Bool("progress", true,
		"Display a progress bar over the runs. Only used if the output is a color terminal.")
	flagConfig = commandline.CreateConfigSettingsFlag("config")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagOrder < 0 || *flagThreads < 1 {
		klog.Errorf("-order must be >= 0 and -threads must be >= 1, got -order=%d and -threads=%d", *flagOrder, *flagThreads)
		os.Exit(1)
	}
	selected, err := selectKernels(*flagOp)
	if err != nil {
		klog.Errorf("%v", err)
		os.Exit(1)
	}
	exec := newExecutor()

	report := commandline.NewReport()
	fmt.Println(summaryTable(exec, report.RunID))
	threadCounts := commandline.ThreadCounts(*flagThreads)
	var numRuns int
	for _, k := range selected {
		numRuns += k.numRuns(threadCounts)
	}
	progress := commandline.NewProgress(os.Stdout, numRuns, *flagProgress && commandline.IsColorTerminal())
	allOk := true
	for _, k := range selected {
		if !runKernel(exec, k, threadCounts, report, progress) {
			allOk = false
		}
	}
	progress.Done()
	fmt.Println(report.Table())

	if *flagCSV != "" {
		must.M(report.AppendCSV(*flagCSV))
		klog.V(1).Infof("Results appended to %q (run id %s)", *flagCSV, report.RunID)
	}
	if *flagPlot != "" {
		if err := report.PlotSpeedup(*flagPlot); err != nil {
			klog.Errorf("Failed to plot speedups: %+v", err)
		}
	}
	if !allOk {
		klog.Errorf("Parallel results differ from the sequential ones, see the table above.")
		os.Exit(1)
	}
}

// newExecutor uses the -config flag if set, or otherwise $SQMATRIX_CONFIG or the default configuration.
func newExecutor() *ops.Executor {
	if *flagConfig == "" {
		return must.M1(ops.New())
	}
	config, keys, err := commandline.ParseConfigSettings(*flagConfig)
	if err != nil {
		klog.Fatalf("Invalid -config=%q: %+v", *flagConfig, err)
	}
	klog.V(1).Infof("Settings from -config: %v", keys)
	return must.M1(ops.NewFromConfig(config))
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 0, 4)
	keyStyle   = lipgloss.NewStyle().Align(lipgloss.Right).PaddingLeft(1).PaddingRight(1)
	valueStyle = lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
)

func summaryTable(exec *ops.Executor, runID string) string {
	table := lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 0 {
				return keyStyle
			}
			return valueStyle
		})
	n := *flagOrder
	table.Row("order", humanize.Comma(int64(n)))
	table.Row("cells", humanize.Comma(int64(n)*int64(n)))
	table.Row("bytes per matrix", humanize.IBytes(uint64(n)*uint64(n)*uint64(matrix.ElementSize)))
	table.Row("threads", fmt.Sprintf("%v", commandline.ThreadCounts(*flagThreads)))
	table.Row("cpus", fmt.Sprintf("%d (GOMAXPROCS=%d)", runtime.NumCPU(), runtime.GOMAXPROCS(0)))
	table.Row("cpu features", cpuFeatures())
	table.Row("config", exec.Config().String())
	table.Row("run id", runID)
	return titleStyle.Render("sqmatrix") + "\n" + table.Render()
}

func cpuFeatures() string {
	features := fmt.Sprintf("cache line pad=%dB", unsafe.Sizeof(cpu.CacheLinePad{}))
	switch runtime.GOARCH {
	case "amd64":
		features += fmt.Sprintf(", avx2=%v, avx512f=%v", cpu.X86.HasAVX2, cpu.X86.HasAVX512F)
	case "arm64":
		features += fmt.Sprintf(", asimd=%v, sve=%v", cpu.ARM64.HasASIMD, cpu.ARM64.HasSVE)
	}
	return features
}
