package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/nao1215/linkprobe/internal/model"
)

const (
	barLength = 25
	barFill   = "█"
	barEmpty  = "-"
)

// Bar draws "Progress: |████-----| 40.0% Complete" and redraws it in place
// after every outcome.
type Bar struct {
	out   io.Writer
	total int64
	done  atomic.Int64

	// mu serializes writes so concurrent observers do not interleave lines.
	mu       sync.Mutex
	finished bool
}

// New creates a bar for total items and draws it at 0%.
func New(out io.Writer, total int) *Bar {
	b := &Bar{out: out, total: int64(total)}
	b.draw(0)
	return b
}

// NewIfTerminal returns a bar on f when f is a terminal and enabled is
// true. Otherwise it returns nil, which callers skip when registering
// observers.
func NewIfTerminal(f *os.File, total int, enabled bool) *Bar {
	if !enabled || total == 0 || !IsTerminal(f) {
		return nil
	}
	return New(f, total)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Observe implements probe.Observer.
func (b *Bar) Observe(outcome model.ProbeOutcome) {
	if outcome.Attempt != model.AttemptBatch {
		return
	}
	b.draw(b.done.Add(1))
}

// Done returns the number of first-attempt outcomes seen.
func (b *Bar) Done() int64 {
	return b.done.Load()
}

func (b *Bar) draw(done int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	if done > b.total {
		done = b.total
	}
	fmt.Fprint(b.out, "\r"+Render(done, b.total))
	if done == b.total {
		fmt.Fprintln(b.out)
		b.finished = true
	}
}

// Render returns the bar line for done out of total without the leading
// carriage return.
func Render(done, total int64) string {
	percent := 100.0
	filled := barLength
	if total > 0 {
		percent = 100 * float64(done) / float64(total)
		filled = int(int64(barLength) * done / total)
	}
	bar := strings.Repeat(barFill, filled) + strings.Repeat(barEmpty, barLength-filled)
	return fmt.Sprintf("Progress: |%s| %.1f%% Complete", bar, percent)
}
