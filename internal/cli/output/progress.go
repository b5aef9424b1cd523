package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// ProgressBar renders completed/total counts on a single line.
// It is safe for concurrent use.
type ProgressBar struct {
	w     io.Writer
	title string
	width int
	step  int64

	mu      sync.Mutex
	total   int64
	current int64
	drawn   int64
}

// NewProgressBar creates a progress bar for total units of work.
func NewProgressBar(w io.Writer, title string, total int64) *ProgressBar {
	step := total / 100
	if step < 1 {
		step = 1
	}
	return &ProgressBar{
		w:     w,
		title: title,
		width: 40,
		total: total,
		step:  step,
	}
}

// Increment adds n completed units and redraws at most once per percent.
func (p *ProgressBar) Increment(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	if p.current-p.drawn >= p.step || p.current >= p.total {
		p.render()
	}
}

// Current returns the number of completed units.
func (p *ProgressBar) Current() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Finish draws the final state and ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render()
	fmt.Fprintln(p.w)
}

func (p *ProgressBar) render() {
	p.drawn = p.current
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %d", p.title, p.current)
		return
	}

	percent := float64(p.current) / float64(p.total)
	if percent > 1 {
		percent = 1
	}
	filled := int(float64(p.width) * percent)
	bar := strings.Repeat("#", filled) + strings.Repeat(".", p.width-filled)

	fmt.Fprintf(p.w, "\r%s [%s] %3.0f%% (%d/%d)", p.title, bar, percent*100, p.current, p.total)
}
