// Package theme holds the terminal styles used by the CLI.
package theme

import (
	"fmt"

	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Question = lipgloss.NewStyle().
			Bold(true).
			Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Warning = lipgloss.NewStyle().
		Foreground(Accent)
)

// Answer states
var (
	Selected = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Result card shown after a quiz.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Border).
	Padding(0, 2)

// Score renders "score/total" colored by how well the quiz went.
func Score(score, total int) string {
	s := fmt.Sprintf("%d/%d", score, total)
	switch {
	case score == total:
		return Correct.Render(s)
	case score*2 >= total:
		return Selected.Render(s)
	default:
		return Incorrect.Render(s)
	}
}

// Mark renders a check or cross for a scored answer.
func Mark(correct bool) string {
	if correct {
		return Correct.Render("✓")
	}
	return Incorrect.Render("✗")
}
