package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/cjquines/cfish/internal/deck"
	"github.com/cjquines/cfish/internal/fish"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	TeamAStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")).
			Bold(true)

	TeamBStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7B267")).
			Bold(true)

	TurnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	RedCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	BlackCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	PromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)
)

const (
	focusColor = lipgloss.Color("#04B575")
	paneColor  = lipgloss.Color("#626262")
)

// teamStyle picks the colour of a team
func teamStyle(t fish.Team) lipgloss.Style {
	if t == fish.TeamA {
		return TeamAStyle
	}
	return TeamBStyle
}

// cardStyle colours hearts, diamonds and the red joker red
func cardStyle(c deck.Card) lipgloss.Style {
	if c.Suit.IsRed() || (c.Suit == deck.Joker && c.Rank == deck.Red) {
		return RedCardStyle
	}
	return BlackCardStyle
}
