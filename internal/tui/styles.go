package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the popup's styles.
type Theme struct {
	Box      lipgloss.Style
	Heading  lipgloss.Style
	Subtle   lipgloss.Style
	Label    lipgloss.Style
	Keyword  lipgloss.Style
	URL      lipgloss.Style
	Selected lipgloss.Style
	Button   lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
}

func DefaultTheme() *Theme {
	accent := lipgloss.AdaptiveColor{Light: "#3B5BDB", Dark: "#748FFC"}
	muted := lipgloss.AdaptiveColor{Light: "#868E96", Dark: "#6C757D"}

	return &Theme{
		Box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(1, 2),
		Heading:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		Subtle:   lipgloss.NewStyle().Foreground(muted),
		Label:    lipgloss.NewStyle().Bold(true),
		Keyword:  lipgloss.NewStyle().Bold(true),
		URL:      lipgloss.NewStyle().Foreground(muted),
		Selected: lipgloss.NewStyle().Foreground(accent).Bold(true),
		Button:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(accent).Padding(0, 1),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#E03131")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("#2F9E44")),
	}
}
