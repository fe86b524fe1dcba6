package ui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle ANSI 6 (Cyan), readable on both dark and light terminals
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	// UsageStyle ANSI 2 (Green) for arguments and usage lines
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle ANSI 8 (Bright Black / Gray) for descriptions
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// FlagStyle ANSI 3 (Yellow) for flags
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// ToolStyle dims the tool execution trace in the chat loop
	ToolStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// WarnStyle ANSI 3 (Yellow) for degraded run outcomes
	WarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
)
