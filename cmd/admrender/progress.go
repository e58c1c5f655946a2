package main

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/cwbudde/admrender/render"
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressBars shows one bar per render target.
type progressBars struct {
	out    io.Writer
	target string
	bar    *progressbar.ProgressBar
}

func newProgressBars(out io.Writer) *progressBars {
	return &progressBars{out: out}
}

func (p *progressBars) update(pr render.Progress) {
	if p.bar == nil || p.target != pr.Target.ID {
		p.finish()
		p.target = pr.Target.ID
		p.bar = progressbar.NewOptions64(int64(pr.TotalFrames),
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription(pr.Target.ID+" "+pr.Target.Name),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set64(int64(pr.Frames))
}

func (p *progressBars) finish() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}
