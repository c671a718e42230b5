package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("13"))

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("5")).
			Padding(0, 1)

	doneStyle = lipgloss.NewStyle().
			Faint(true).
			Strikethrough(true)

	overdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	starStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	archivedStyle = lipgloss.NewStyle().
			Faint(true).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Faint(true)
)
