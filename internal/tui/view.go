package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"nmwifi/gonetworkmanager"
	"nmwifi/internal/panel"
)

const (
	appName = "nmwifi"

	// Used until the first tea.WindowSizeMsg arrives.
	fallbackWidth = 60

	wifiOffNotice = "WIFI OFF PRESS o/O TO TURN IT ON"
	noNetworks    = "No networks found. Press s to scan."
	continueHint  = "Press Enter to continue..."
)

// layout is everything render needs beyond the panel state. The strings are
// pre-rendered bubbles components.
type layout struct {
	width    int
	height   int
	spinner  string
	password string
	footer   string
}

// render draws one frame. It only reads its arguments.
func render(s panel.State, d panel.Dialog, pageSize int, l layout) string {
	width := l.width - appStyle.GetHorizontalFrameSize()
	if l.width <= 0 {
		width = fallbackWidth
	}
	height := l.height - appStyle.GetVerticalFrameSize()
	if height < 0 {
		height = 0
	}

	switch d.Mode {
	case panel.ModeBrowsing, panel.ModeExit:
		return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			headerView(s),
			"",
			listView(s, pageSize, width),
			footerStyle.Render(l.footer),
		))
	default:
		content := dialogStyle.Render(dialogView(d, l))
		return appStyle.Render(lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content))
	}
}

func headerView(s panel.State) string {
	lines := []string{headerStyle.Render(appName)}
	if !s.WifiEnabled {
		lines = append(lines, wifiOffStyle.Render("WiFi: Off"))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}
	if s.Connected != "" {
		info := "Connected to: " + s.Connected
		if s.IPAddress != "" {
			info += " - " + s.IPAddress
		}
		lines = append(lines, headerInfoStyle.Render(info))
	}
	lines = append(lines, headerInfoStyle.Render(fmt.Sprintf("Available %d Networks:", len(s.Networks))))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func listView(s panel.State, pageSize, width int) string {
	if !s.WifiEnabled {
		return noticeBoxStyle.Render(wifiOffNotice)
	}
	if len(s.Networks) == 0 {
		return noticeBoxStyle.Render(noNetworks)
	}
	visible := s.Visible(pageSize)
	rows := make([]string, 0, len(visible))
	for i, n := range visible {
		selected := s.ViewportStart+i == s.Selected
		rows = append(rows, networkRow(n, s.Connected, selected, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// signalBars draws one bar per 20 points of signal.
func signalBars(signal int) string {
	if signal < 0 {
		signal = 0
	}
	return strings.Repeat("|", signal/20)
}

func networkRow(n gonetworkmanager.Network, connected string, selected bool, width int) string {
	style := rowStyle
	if selected {
		style = selectedRowStyle
	}
	inner := width - style.GetHorizontalFrameSize()
	if inner < 12 {
		inner = 12
	}

	bars := signalBars(n.Signal)
	var tags []string
	if n.Protected {
		tags = append(tags, protectedStyle.Render("[P]"))
	}
	if connected != "" && n.Name == connected {
		tags = append(tags, activeStyle.Render("[*]"))
	}
	right := strings.Join(tags, " ")

	nameWidth := inner - len(bars) - lipgloss.Width(right) - 2
	if nameWidth < 1 {
		nameWidth = 1
	}
	name := runewidth.Truncate(n.Name, nameWidth, "…")
	if selected {
		name = selectedText.Render(name)
	}

	left := name + " " + signalStyle.Render(bars)
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return style.Render(left + strings.Repeat(" ", gap) + right)
}

// pageSize is how many network rows fit under the header and above the footer.
func pageSize(height int, s panel.State, footer string, maxRows int) int {
	rowHeight := rowStyle.GetVerticalFrameSize() + 1
	used := appStyle.GetVerticalFrameSize() + lipgloss.Height(headerView(s)) + 1 + lipgloss.Height(footer)
	n := (height - used) / rowHeight
	if maxRows > 0 && n > maxRows {
		n = maxRows
	}
	if n < 1 {
		n = 1
	}
	return n
}

func dialogView(d panel.Dialog, l layout) string {
	name := d.Network.Name
	switch d.Mode {
	case panel.ModeConnectPrompt:
		return lipgloss.JoinVertical(lipgloss.Center,
			dialogTitle.Render(fmt.Sprintf("Connecting to %s...", name)),
			"",
			hintStyle.Render("Press Esc to return or any key to connect."),
		)

	case panel.ModePasswordEntry:
		lines := []string{
			dialogTitle.Render(fmt.Sprintf("Connecting to %s...", name)),
			"",
			"Enter Password:",
			l.password,
		}
		if d.Hint != "" {
			lines = append(lines, warningStyle.Render(d.Hint))
		}
		lines = append(lines, "", hintStyle.Render("Enter to connect, Esc to cancel"))
		return lipgloss.JoinVertical(lipgloss.Center, lines...)

	case panel.ModeConnecting:
		return connectingStyle.Render(fmt.Sprintf("%s Connecting to %s...", l.spinner, name))

	case panel.ModeConnectResult:
		if d.Err == nil {
			return lipgloss.JoinVertical(lipgloss.Center,
				successStyle.Render("Connected!"),
				"",
				hintStyle.Render(continueHint),
			)
		}
		return lipgloss.JoinVertical(lipgloss.Center,
			errorStyle.Render("Failed to connect!"),
			hintStyle.Render(d.Err.Error()),
			"",
			hintStyle.Render(continueHint),
		)

	case panel.ModeOffConfirm:
		return lipgloss.JoinVertical(lipgloss.Center,
			dialogTitle.Render("Turn off WiFi?"),
			"",
			"Are you sure? (Y/N)",
		)

	case panel.ModeForgetConfirm:
		return lipgloss.JoinVertical(lipgloss.Center,
			dialogTitle.Render(fmt.Sprintf("Forget network %s?", name)),
			"",
			"(Y/N)",
		)

	case panel.ModeForgetRefused:
		return lipgloss.JoinVertical(lipgloss.Center,
			warningStyle.Render(fmt.Sprintf("Cannot forget %s while connected to it.", name)),
			"",
			hintStyle.Render(continueHint),
		)

	case panel.ModeForgetResult:
		return lipgloss.JoinVertical(lipgloss.Center,
			successStyle.Render("Forgot network: "+name),
			"",
			hintStyle.Render(continueHint),
		)

	case panel.ModeHelp:
		return helpView()
	}
	return ""
}

var helpLines = [][2]string{
	{"↑/↓", "move selection"},
	{"enter", "connect to the selected network"},
	{"s", "rescan networks"},
	{"f", "forget the selected network"},
	{"o", "turn WiFi on or off"},
	{"h", "show this help"},
	{"q", "quit"},
}

func helpView() string {
	lines := []string{dialogTitle.Render("Commands"), ""}
	for _, l := range helpLines {
		lines = append(lines, fmt.Sprintf("%-6s %s", l[0], l[1]))
	}
	lines = append(lines, "", hintStyle.Render("Press any key to return."))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
