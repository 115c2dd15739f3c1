package tui

import "github.com/charmbracelet/lipgloss"

var (
	appStyle = lipgloss.NewStyle().Margin(0, 1)

	// ANSI palette for broad terminal support
	colorPrimary = lipgloss.Color("5")
	colorAccent  = lipgloss.Color("6")
	colorSuccess = lipgloss.Color("2")
	colorError   = lipgloss.Color("1")
	colorWarning = lipgloss.Color("3")
	colorFaint   = lipgloss.Color("8")
	colorText    = lipgloss.Color("7")
	colorInverse = lipgloss.Color("0")

	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headerInfoStyle = lipgloss.NewStyle().Foreground(colorText)
	wifiOffStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorError)

	rowStyle         = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).BorderForeground(colorFaint).Padding(0, 1)
	selectedRowStyle = rowStyle.BorderForeground(colorPrimary)
	selectedText     = lipgloss.NewStyle().Foreground(colorInverse).Background(colorText)
	signalStyle      = lipgloss.NewStyle().Foreground(colorSuccess)
	protectedStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	activeStyle      = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)

	noticeBoxStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).BorderForeground(colorAccent).Padding(0, 1)

	dialogStyle     = lipgloss.NewStyle().Padding(1, 2)
	dialogTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	successStyle    = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	warningStyle    = lipgloss.NewStyle().Foreground(colorWarning)
	hintStyle       = lipgloss.NewStyle().Foreground(colorFaint)
	connectingStyle = lipgloss.NewStyle().Foreground(colorAccent)
	footerStyle     = lipgloss.NewStyle().Foreground(colorFaint)
)
