// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
)

// ProgressbarStyle to use. Defaults to the ASCII version.
// Consider "progressbar.ThemeUnicode" for a prettier version.
// But it requires some of the graphical symbols to be supported.
var ProgressbarStyle = progressbar.ThemeASCII

// Progress displays a progress bar over the timed runs. A nil or disabled Progress is a no-op.
type Progress struct {
	bar     *progressbar.ProgressBar
	termenv *termenv.Output
	w       io.Writer
}

// NewProgress creates a progress bar for numRuns runs, written to w.
// If enabled is false it returns a Progress that displays nothing.
func NewProgress(w io.Writer, numRuns int, enabled bool) *Progress {
	p := &Progress{w: w}
	if !enabled || numRuns <= 0 {
		return p
	}
	if f, ok := w.(*os.File); ok {
		p.termenv = termenv.NewOutput(f)
		p.termenv.HideCursor()
	}
	p.bar = progressbar.NewOptions(numRuns,
		progressbar.OptionSetDescription(""),
		progressbar.OptionUseANSICodes(p.termenv != nil),
		progressbar.OptionEnableColorCodes(p.termenv != nil),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("runs"),
		progressbar.OptionSetTheme(ProgressbarStyle),
		progressbar.OptionSetWriter(w),
	)
	return p
}

// Step advances the bar by one finished run, described by description.
func (p *Progress) Step(description string) {
	if p == nil || p.bar == nil || p.bar.IsFinished() {
		return
	}
	p.bar.Describe(fmt.Sprintf("%-24s", description))
	_ = p.bar.Add(1)
}

// Done finishes the progress bar and restores the cursor.
func (p *Progress) Done() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	if p.termenv != nil {
		p.termenv.ShowCursor()
	}
	_, _ = fmt.Fprintln(p.w)
	p.bar = nil
}
