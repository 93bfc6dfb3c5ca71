package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar tracks rows written during a dump. A total of zero or less
// means the row count is unknown and only the counter is shown.
type ProgressBar struct {
	ui    *UI
	bar   progress.Model
	label string
	total int64
	start time.Time

	mu         sync.Mutex
	current    int64
	lastRender time.Time
}

// Redraws are throttled so large dumps don't flood the terminal.
const progressRedrawInterval = 50 * time.Millisecond

// NewProgressBar creates a progress bar on stderr.
func (u *UI) NewProgressBar(label string, total int64) *ProgressBar {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)

	return &ProgressBar{
		ui:    u,
		bar:   bar,
		label: label,
		total: total,
		start: time.Now(),
	}
}

// Update sets the current row count.
func (p *ProgressBar) Update(current int64) {
	p.mu.Lock()
	p.current = current
	now := time.Now()
	due := now.Sub(p.lastRender) >= progressRedrawInterval
	if due {
		p.lastRender = now
	}
	p.mu.Unlock()

	if due && p.ui.styleErr() {
		p.render(current)
	}
}

// Current returns the last value passed to Update.
func (p *ProgressBar) Current() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *ProgressBar) render(current int64) {
	labelStyle := lipgloss.NewStyle().Width(18)
	countStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	if p.total <= 0 {
		fmt.Fprintf(p.ui.Err, "\r\033[K  %s %s",
			labelStyle.Render(p.label),
			countStyle.Render(fmt.Sprintf("%d rows", current)),
		)
		return
	}

	pct := min(float64(current)/float64(p.total), 1)
	fmt.Fprintf(p.ui.Err, "\r\033[K  %s %s %s",
		labelStyle.Render(p.label),
		p.bar.ViewAs(pct),
		countStyle.Render(fmt.Sprintf("%d/%d", current, p.total)),
	)
}

// Complete finishes the bar with the final count and elapsed time.
func (p *ProgressBar) Complete() {
	current := p.Current()
	elapsed := time.Since(p.start).Round(time.Millisecond)

	if !p.ui.styleErr() {
		fmt.Fprintf(p.ui.Err, "%s: %d rows in %s\n", p.label, current, elapsed)
		return
	}

	labelStyle := lipgloss.NewStyle().Width(18)
	fmt.Fprintf(p.ui.Err, "\r\033[K  %s %s %s\n",
		StyleSuccess.Render(SymbolSuccess),
		labelStyle.Render(p.label),
		StyleSuccess.Render(fmt.Sprintf("%d rows in %s", current, elapsed)),
	)
}

// Fail finishes the bar with an error.
func (p *ProgressBar) Fail(err error) {
	if !p.ui.styleErr() {
		fmt.Fprintf(p.ui.Err, "%s: FAILED after %d rows: %v\n", p.label, p.Current(), err)
		return
	}

	labelStyle := lipgloss.NewStyle().Width(18)
	fmt.Fprintf(p.ui.Err, "\r\033[K  %s %s %s\n",
		StyleError.Render(SymbolError),
		labelStyle.Render(p.label),
		StyleError.Render(err.Error()),
	)
}
