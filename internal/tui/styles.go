// Package tui is the terminal storefront: a product grid with a filter bar,
// a comparison table and a non-interactive renderer for --print.
package tui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the views.
type Styles struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Banner   lipgloss.Style
	Notice   lipgloss.Style
	Badge    lipgloss.Style
	Active   lipgloss.Style
	Input    lipgloss.Style
	Focused  lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	InStock  lipgloss.Style
	OutStock lipgloss.Style
}

func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#9D8CFF"}
	border := lipgloss.AdaptiveColor{Light: "#C8C8C8", Dark: "#4A4A4A"}
	muted := lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#8A8A8A"}

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Banner: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#C0392B")).
			Padding(0, 1),
		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E67E22")),
		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primary).
			Padding(0, 1),
		Active: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			Underline(true),
		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		Focused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			Padding(0, 1),
		Cell: lipgloss.NewStyle().
			Padding(0, 1),
		InStock: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#27AE60")),
		OutStock: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C0392B")),
	}
}

// PlainStyles renders without colors or padding, for piped output and tests.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	cell := lipgloss.NewStyle().Padding(0, 1)
	return Styles{
		Title:    plain,
		Muted:    plain,
		Banner:   plain,
		Notice:   plain,
		Badge:    plain,
		Active:   plain,
		Input:    plain,
		Focused:  plain,
		Header:   cell,
		Cell:     cell,
		InStock:  plain,
		OutStock: plain,
	}
}
