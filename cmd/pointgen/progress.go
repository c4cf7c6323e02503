package main

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"pkg.jsn.cam/pointgen/pkg/pointgen"
)

// progressStep is how many appends are batched into one bar update
const progressStep = 1024

// progressSink forwards points and advances a progress bar on stderr
type progressSink struct {
	next    pointgen.Sink
	bar     *progressbar.ProgressBar
	total   int
	count   int
	pending int
}

func newProgressSink(next pointgen.Sink, total int) pointgen.Sink {
	bar := progressbar.NewOptions64(int64(total),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("generating"),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)
	return &progressSink{next: next, bar: bar, total: total}
}

func (p *progressSink) Append(pt pointgen.Point) error {
	if err := p.next.Append(pt); err != nil {
		return err
	}

	p.count++
	p.pending++
	if p.pending >= progressStep || p.count == p.total {
		_ = p.bar.Add(p.pending)
		p.pending = 0
	}
	return nil
}
