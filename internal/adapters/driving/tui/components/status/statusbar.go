// Package status renders the one-line job summary at the bottom of the monitor.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/litmapper/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// Counts tallies jobs by status.
type Counts struct {
	Running   int
	Succeeded int
	Failed    int
}

// Tally counts the given jobs. Nil entries are jobs not yet fetched and
// count as running.
func Tally(jobs []*domain.Job) Counts {
	var c Counts
	for _, j := range jobs {
		switch {
		case j == nil || !j.Done():
			c.Running++
		case j.Status == domain.JobStatusSuccess:
			c.Succeeded++
		default:
			c.Failed++
		}
	}
	return c
}

// Bar displays job counts, the last error and keybinding hints.
type Bar struct {
	styles *styles.Styles
	help   help.Model
	counts Counts
	errMsg string
	hints  []key.Binding
	width  int
}

// NewBar creates a status bar.
func NewBar(s *styles.Styles) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Bar{styles: s, help: help.New(), width: 80}
}

// SetCounts replaces the job tally.
func (b *Bar) SetCounts(c Counts) { b.counts = c }

// Counts returns the job tally.
func (b *Bar) Counts() Counts { return b.counts }

// SetError shows err until cleared. A nil err clears it.
func (b *Bar) SetError(err error) {
	if err == nil {
		b.errMsg = ""
		return
	}
	b.errMsg = err.Error()
}

// SetHints replaces the keybinding hints.
func (b *Bar) SetHints(bindings []key.Binding) { b.hints = bindings }

// SetWidth sets the rendered width.
func (b *Bar) SetWidth(width int) {
	b.width = width
	b.help.Width = width / 2
}

// View renders the bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.help.ShortHelpView(b.hints)

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	if b.errMsg != "" {
		return b.styles.Error.Render("Error: " + b.errMsg)
	}

	c := b.counts
	if c.Running+c.Succeeded+c.Failed == 0 {
		return b.styles.Muted.Render("No jobs")
	}
	return strings.Join([]string{
		b.styles.Running.Render(fmt.Sprintf("%d running", c.Running)),
		b.styles.Succeeded.Render(fmt.Sprintf("%d done", c.Succeeded)),
		b.styles.Failed.Render(fmt.Sprintf("%d failed", c.Failed)),
	}, b.styles.Muted.Render(" · "))
}
