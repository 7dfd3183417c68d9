package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/mattn/go-isatty"
)

// clearLine returns the cursor to column 0 and erases the line.
const clearLine = "\r\033[K"

// interactive reports whether transient progress output should be drawn.
func (a *app) interactive() bool {
	if a.opts.json || a.opts.quiet {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressLine draws a single-line progress bar on stderr. Safe for use from
// worker goroutines.
type progressLine struct {
	mu      sync.Mutex
	w       io.Writer
	bar     progress.Model
	label   string
	enabled bool
}

func (a *app) newProgress(label string) *progressLine {
	return &progressLine{
		w:       os.Stderr,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		label:   label,
		enabled: a.interactive(),
	}
}

// Update redraws the bar for done of total items.
func (p *progressLine) Update(done, total int) {
	if !p.enabled || total == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	pct := float64(done) / float64(total)
	_, _ = fmt.Fprintf(p.w, "%s%s %s %d/%d", clearLine, p.label, p.bar.ViewAs(pct), done, total)
}

// Finish erases the bar.
func (p *progressLine) Finish() {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprint(p.w, clearLine)
}

// spin runs fn in a background goroutine and animates a spinner on stderr
// until it returns.
func (a *app) spin(label string, fn func() error) error {
	if !a.interactive() {
		return fn()
	}

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	s := spinner.Dot
	ticker := time.NewTicker(s.FPS)
	defer ticker.Stop()
	for frame := 0; ; frame++ {
		select {
		case err := <-done:
			_, _ = fmt.Fprint(os.Stderr, clearLine)
			return err
		case <-ticker.C:
			_, _ = fmt.Fprintf(os.Stderr, "%s%s %s", clearLine, s.Frames[frame%len(s.Frames)], label)
		}
	}
}
