package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Progress draws a single-line progress bar for multi-file compilations.
// It is safe for concurrent use by worker goroutines.
type Progress struct {
	mu      sync.Mutex
	writer  io.Writer
	total   int
	done    int
	failed  int
	started time.Time
}

// NewProgress creates a progress bar for total files. A nil writer disables
// output.
func NewProgress(w io.Writer, total int) *Progress {
	p := &Progress{writer: w, total: total, started: time.Now()}
	p.mu.Lock()
	p.render()
	p.mu.Unlock()
	return p
}

// Done records one finished file.
func (p *Progress) Done(failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if failed {
		p.failed++
	}
	p.render()
}

// Counts returns the number of finished and failed files.
func (p *Progress) Counts() (done, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done, p.failed
}

// Finish ends the progress line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer != nil && p.total > 0 {
		fmt.Fprintln(p.writer)
	}
}

func (p *Progress) render() {
	if p.writer == nil || p.total == 0 {
		return
	}

	const barWidth = 30
	filled := barWidth * p.done / p.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	rate := float64(p.done) / time.Since(p.started).Seconds()

	fmt.Fprintf(p.writer, "\rCompiling: [%s] %d/%d files, %d failed, %.1f files/s",
		bar, p.done, p.total, p.failed, rate)
}
