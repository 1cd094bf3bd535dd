package tui

import "github.com/charmbracelet/lipgloss"

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	stylePlayer = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true)

	styleNpc = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	styleInteractable = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39"))

	styleZone = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleSpeaker = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleChoiceCursor = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34")).
				Bold(true)

	stylePromptHint = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	styleDialogueBox = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1)

	styleEnding = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true).
			Align(lipgloss.Center)
)
