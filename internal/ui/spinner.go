package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Spinner animates on stderr while a connection or statement is in flight.
type Spinner struct {
	ui    *UI
	label string
	done  chan struct{}
	wg    sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// Braille frames.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// NewSpinner creates a spinner. Nothing is drawn until Start.
func (u *UI) NewSpinner(label string) *Spinner {
	return &Spinner{
		ui:    u,
		label: label,
		done:  make(chan struct{}),
	}
}

// Start begins the animation. Without a styled stderr the label is printed once.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	if !s.ui.styleErr() {
		fmt.Fprintf(s.ui.Err, "%s...", s.label)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		frame := 0
		frameStyle := lipgloss.NewStyle().Foreground(ColorProgress)

		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				fmt.Fprintf(s.ui.Err, "\r%s %s...", frameStyle.Render(spinnerFrames[frame]), s.label)
				frame = (frame + 1) % len(spinnerFrames)
			}
		}
	}()
}

// halt stops the animation goroutine. It reports false when the spinner
// was never started or has already been halted.
func (s *Spinner) halt() bool {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return false
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.done)
	s.wg.Wait()
	return true
}

// Stop clears the spinner without a final status.
func (s *Spinner) Stop() {
	if !s.halt() {
		return
	}
	if s.ui.styleErr() {
		fmt.Fprint(s.ui.Err, "\r\033[K")
	} else {
		fmt.Fprintln(s.ui.Err)
	}
}

// Success stops the spinner and shows msg with a checkmark.
func (s *Spinner) Success(msg string) {
	s.finish(StyleSuccess.Render(SymbolSuccess), msg)
}

// Error stops the spinner and shows msg in red.
func (s *Spinner) Error(msg string) {
	s.finish(StyleError.Render(SymbolError), StyleError.Render(msg))
}

func (s *Spinner) finish(symbol, msg string) {
	if !s.halt() {
		return
	}
	if !s.ui.styleErr() {
		fmt.Fprintf(s.ui.Err, " %s\n", msg)
		return
	}
	fmt.Fprintf(s.ui.Err, "\r\033[K%s %s... %s\n", symbol, s.label, msg)
}
