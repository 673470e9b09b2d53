// Package styles provides the colour palette and lipgloss styles for the job monitor.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// Theme is the colour palette.
type Theme struct {
	Accent     lipgloss.Color
	Highlight  lipgloss.Color
	Text       lipgloss.Color
	Subtle     lipgloss.Color
	Running    lipgloss.Color
	Succeeded  lipgloss.Color
	Failed     lipgloss.Color
	Frame      lipgloss.Color
	BarSurface lipgloss.Color
}

// DefaultTheme returns the default palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:     lipgloss.Color("#2A9D8F"),
		Highlight:  lipgloss.Color("#E9C46A"),
		Text:       lipgloss.Color("#E5E7EB"),
		Subtle:     lipgloss.Color("#6B7280"),
		Running:    lipgloss.Color("#F4A261"),
		Succeeded:  lipgloss.Color("#8AC926"),
		Failed:     lipgloss.Color("#E76F51"),
		Frame:      lipgloss.Color("#374151"),
		BarSurface: lipgloss.Color("#111827"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title     lipgloss.Style
	Heading   lipgloss.Style
	Normal    lipgloss.Style
	Muted     lipgloss.Style
	Selected  lipgloss.Style
	Error     lipgloss.Style
	StatusBar lipgloss.Style
	Panel     lipgloss.Style

	// Job status badges.
	Running   lipgloss.Style
	Succeeded lipgloss.Style
	Failed    lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme selects DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Accent).
			MarginBottom(1),

		Heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Highlight),

		Normal: lipgloss.NewStyle().Foreground(theme.Text),
		Muted:  lipgloss.NewStyle().Foreground(theme.Subtle),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.BarSurface).
			Background(theme.Accent),

		Error: lipgloss.NewStyle().Foreground(theme.Failed),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Subtle).
			Background(theme.BarSurface).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Frame).
			Padding(0, 1),

		Running:   lipgloss.NewStyle().Foreground(theme.Running),
		Succeeded: lipgloss.NewStyle().Foreground(theme.Succeeded),
		Failed:    lipgloss.NewStyle().Bold(true).Foreground(theme.Failed),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// ForStatus returns the badge style for a job status.
func (s *Styles) ForStatus(status domain.JobStatus) lipgloss.Style {
	switch status {
	case domain.JobStatusSuccess:
		return s.Succeeded
	case domain.JobStatusFailed:
		return s.Failed
	default:
		return s.Running
	}
}
