// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"github.com/gomlx/sqmatrix/pkg/support/fsutil"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PlotSpeedup saves a plot of the speedup over the sequential version per number of threads, one line
// per operation. The image format is given by the file extension (e.g. ".png", ".svg").
func (r *Report) PlotSpeedup(filePath string) error {
	p := plot.New()
	p.Title.Text = "Speedup over sequential"
	p.X.Label.Text = "threads"
	p.Y.Label.Text = "speedup"
	p.Y.Min = 0

	var lines []any
	var ops []string
	series := make(map[string]plotter.XYs)
	for _, result := range r.Results {
		if result.Threads == Sequential || result.Wall <= 0 || result.Baseline <= 0 {
			continue
		}
		if _, found := series[result.Op]; !found {
			ops = append(ops, result.Op)
		}
		series[result.Op] = append(series[result.Op], plotter.XY{
			X: float64(result.Threads),
			Y: float64(result.Baseline) / float64(result.Wall),
		})
	}
	if len(ops) == 0 {
		return errors.New("no parallel results to plot")
	}
	for _, op := range ops {
		lines = append(lines, op, series[op])
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return errors.Wrap(err, "failed to add speedup lines to plot")
	}
	filePath, err := fsutil.ReplaceTilde(filePath)
	if err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, filePath); err != nil {
		return errors.Wrapf(err, "failed to save plot to %q", filePath)
	}
	return nil
}
