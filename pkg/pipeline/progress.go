package pipeline

import (
	"os"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// counter is a live record ticker shown while a pipeline stage runs.
// When progress rendering is off every method is a no-op, so callers
// never branch on it.
type counter struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

// newCounter returns a ticker rendering to stderr, or an inert one
// when opts.Progress is off. The corpus size is unknown up front, so
// the ticker counts records instead of filling a bar.
func newCounter(opts Options, verb string) *counter {
	if !opts.Progress {
		return &counter{}
	}
	p := mpb.New(mpb.WithWidth(16), mpb.WithOutput(os.Stderr))
	bar := p.AddSpinner(-1,
		mpb.PrependDecorators(
			decor.Name(verb+" "),
			decor.CurrentNoUnit("%d records"),
		),
		mpb.AppendDecorators(decor.Elapsed(decor.ET_STYLE_GO)),
	)
	return &counter{p: p, bar: bar}
}

// tick records one consumed corpus record.
func (c *counter) tick() {
	if c.bar != nil {
		c.bar.Increment()
	}
}

// done completes the ticker at the current count and waits for the
// final frame to render.
func (c *counter) done() {
	if c.p != nil {
		c.bar.SetTotal(-1, true)
		c.p.Wait()
	}
}

// abort drops the ticker without a completion frame.
func (c *counter) abort() {
	if c.p != nil {
		c.bar.Abort(true)
		c.p.Wait()
	}
}
