package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent    = lipgloss.Color("#60a5fa")
	subtle    = lipgloss.Color("#64748b")
	textMuted = lipgloss.Color("#94a3b8")
	danger    = lipgloss.Color("#fca5a5")
	caution   = lipgloss.Color("#fcd34d")
	good      = lipgloss.Color("#34d399")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f8fafc"))
	subtitleStyle = lipgloss.NewStyle().Foreground(textMuted)
	mutedStyle    = lipgloss.NewStyle().Foreground(subtle)
	errorStyle    = lipgloss.NewStyle().Foreground(danger)
	flashStyle    = lipgloss.NewStyle().Foreground(good)
	accentStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true)

	highStyle   = lipgloss.NewStyle().Foreground(danger).Bold(true)
	mediumStyle = lipgloss.NewStyle().Foreground(caution)
	lowStyle    = lipgloss.NewStyle().Foreground(textMuted)

	kpiStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 2)
	kpiLabelStyle = lipgloss.NewStyle().Foreground(textMuted).Bold(true)
	kpiValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f8fafc")).Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(accent).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(subtle).
				BorderBottom(true)
	tableSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#0f172a")).
				Background(accent)

	barStyle    = lipgloss.NewStyle().Foreground(accent)
	userStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true)
	botStyle    = lipgloss.NewStyle().Foreground(good).Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
)
