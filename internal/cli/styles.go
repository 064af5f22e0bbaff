package cli

import "github.com/charmbracelet/lipgloss"

// Theme holds the color scheme for CLI output.
type Theme struct {
	Answer  lipgloss.Color
	Pending lipgloss.Color
	Step    lipgloss.Color
	Hint    lipgloss.Color
	Error   lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Answer:  lipgloss.Color("#00D787"), // green
	Pending: lipgloss.Color("#FFAF00"), // amber
	Step:    lipgloss.Color("#5FAFD7"), // light blue
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
	Error:   lipgloss.Color("#FF005F"), // red
}

func (t Theme) answerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Answer).Bold(true)
}

func (t Theme) pendingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Pending).Bold(true)
}

func (t Theme) stepStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Step)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}
