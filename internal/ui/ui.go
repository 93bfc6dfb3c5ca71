// Package ui provides styled terminal output for the mysqldb CLI.
// Query results go to stdout and status lines to stderr. Styling is
// applied only when the target stream is a terminal and NO_COLOR is unset.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// UI holds the terminal state and provides styled output methods.
type UI struct {
	Out io.Writer // results
	Err io.Writer // status, spinners, progress

	OutTTY  bool
	ErrTTY  bool
	Width   int
	NoColor bool
}

// KV represents a key-value pair for summary displays.
type KV struct {
	Key   string
	Value string
}

// noColorEnv is the standard environment variable to disable colors.
var noColorEnv = os.Getenv("NO_COLOR") != ""

// New creates a UI bound to stdout and stderr with TTY detection.
func New() *UI {
	outTTY := term.IsTerminal(int(os.Stdout.Fd()))
	width := 80
	if outTTY {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	return &UI{
		Out:     os.Stdout,
		Err:     os.Stderr,
		OutTTY:  outTTY,
		ErrTTY:  term.IsTerminal(int(os.Stderr.Fd())),
		Width:   width,
		NoColor: noColorEnv,
	}
}

// NewPlain creates an unstyled UI writing to out and errOut.
func NewPlain(out, errOut io.Writer) *UI {
	return &UI{Out: out, Err: errOut, Width: 80, NoColor: true}
}

// SetNoColor disables colors and animations.
func (u *UI) SetNoColor(noColor bool) {
	u.NoColor = noColor
}

// styleOut reports whether stdout output should be styled.
func (u *UI) styleOut() bool {
	return u.OutTTY && !u.NoColor
}

// styleErr reports whether stderr output should be styled.
func (u *UI) styleErr() bool {
	return u.ErrTTY && !u.NoColor
}

// Println writes a result line to Out.
func (u *UI) Println(s string) {
	fmt.Fprintln(u.Out, s)
}

// Status writes a status line to Err.
func (u *UI) Status(s string) {
	fmt.Fprintln(u.Err, s)
}

// Header renders a bordered header box.
func (u *UI) Header(title string) string {
	if !u.styleOut() {
		return fmt.Sprintf("=== %s ===", title)
	}

	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(0, 2)

	return style.Render(title)
}

// KeyValue renders a styled key-value pair.
func (u *UI) KeyValue(key, value string) string {
	if !u.styleOut() {
		return fmt.Sprintf("%-14s %s", key+":", value)
	}

	keyStyle := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Width(14)

	return "  " + keyStyle.Render(key) + " " + lipgloss.NewStyle().Bold(true).Render(value)
}

// Success renders a success message with a green checkmark.
func (u *UI) Success(msg string) string {
	if !u.styleErr() {
		return "[OK] " + msg
	}
	return StyleSuccess.Render(SymbolSuccess+" ") + msg
}

// Error renders an error message with a red X.
func (u *UI) Error(msg string) string {
	if !u.styleErr() {
		return "[FAILED] " + msg
	}
	return StyleError.Render(SymbolError + " " + msg)
}

// Warning renders a warning message.
func (u *UI) Warning(msg string) string {
	if !u.styleErr() {
		return "[WARN] " + msg
	}
	return StyleWarning.Render(SymbolWarning + " " + msg)
}

// Muted renders dim text for stdout.
func (u *UI) Muted(msg string) string {
	if !u.styleOut() {
		return msg
	}
	return StyleMuted.Render(msg)
}

// SummaryBox renders a bordered summary section.
func (u *UI) SummaryBox(title string, items []KV) string {
	if !u.styleOut() {
		var sb strings.Builder
		fmt.Fprintf(&sb, "=== %s ===\n", title)
		for _, item := range items {
			fmt.Fprintf(&sb, "%-14s %s\n", item.Key+":", item.Value)
		}
		return strings.TrimRight(sb.String(), "\n")
	}

	maxKeyWidth := 0
	for _, item := range items {
		maxKeyWidth = max(maxKeyWidth, len(item.Key))
	}

	keyStyle := lipgloss.NewStyle().Foreground(ColorMuted).Width(maxKeyWidth + 2)
	valueStyle := lipgloss.NewStyle().Bold(true)

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "  "+keyStyle.Render(item.Key)+" "+valueStyle.Render(item.Value))
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)
	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(0, 1)

	return titleStyle.Render("  "+title) + "\n" + boxStyle.Render(strings.Join(lines, "\n"))
}
