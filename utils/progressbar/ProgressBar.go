// Package progressbar implements functionality of printing a progress
// bar to a terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ProgressBar implements a progress bar that must be manually managed.
// That is, Display must be called whenever an updated progress bar
// should be printed.
//
// ProgressBar is not safe for concurrent use.
type ProgressBar struct {
	out io.Writer

	// width is the number of characters wide that the bar is drawn
	width int

	// maxProgress is the number of times Increment should be called
	// before the progress bar reaches 100%
	maxProgress     int
	currentProgress int

	bar       strings.Builder
	startTime time.Time
	closed    bool
}

// NewProgressBar returns a new progress bar that is width characters
// wide, reaches 100% after max Increment calls, and prints to out
func NewProgressBar(out io.Writer, width, max int) *ProgressBar {
	if max < 1 {
		max = 1
	}
	return &ProgressBar{
		out:         out,
		width:       width,
		maxProgress: max,
		startTime:   time.Now(),
	}
}

// Increment increments the internal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ProgressBar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// Progress returns the fraction of iterations completed
func (p *ProgressBar) Progress() float64 {
	return float64(p.currentProgress) / float64(p.maxProgress)
}

// Display prints the progress bar, overwriting the previously printed
// bar
func (p *ProgressBar) Display() {
	if p.closed {
		return
	}
	fmt.Fprintf(p.out, "\r\033[K%v", p.String())
}

// Close prints the final state of the progress bar and moves to the
// next line. Calling Close more than once has no effect.
func (p *ProgressBar) Close() {
	if p.closed {
		return
	}
	p.Display()
	fmt.Fprintln(p.out)
	p.closed = true
}

func (p *ProgressBar) String() string {
	p.bar.Reset()
	p.bar.WriteString("|")

	filled := int(p.Progress() * float64(p.width))
	p.bar.WriteString(strings.Repeat("█", filled))
	p.bar.WriteString(strings.Repeat(" ", p.width-filled))

	fmt.Fprintf(&p.bar, "| [%.2f%% | elapsed: %v]", p.Progress()*100,
		time.Since(p.startTime).Truncate(time.Second))
	return p.bar.String()
}
