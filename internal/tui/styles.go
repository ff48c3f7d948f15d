package tui

import "github.com/charmbracelet/lipgloss"

// Garden palette, shared with the components through the section colours.
var (
	leaf  = lipgloss.AdaptiveColor{Light: "28", Dark: "114"}
	moss  = lipgloss.AdaptiveColor{Light: "236", Dark: "22"}
	soil  = lipgloss.AdaptiveColor{Light: "94", Dark: "137"}
	stone = lipgloss.AdaptiveColor{Light: "246", Dark: "242"}
	wilt  = lipgloss.AdaptiveColor{Light: "160", Dark: "203"}
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Foreground(leaf).
			Background(moss).
			Padding(0, 1).
			Bold(true).
			Underline(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(stone).
				Padding(0, 1)

	dangerStyle = lipgloss.NewStyle().
			Foreground(wilt).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(wilt).
			Padding(0, 2)

	// status lines are mostly "watered Fern" style confirmations or errors
	warningStyle = lipgloss.NewStyle().
			Foreground(soil).
			Italic(true)

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)
