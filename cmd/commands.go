package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nmwifi/gonetworkmanager"
	"nmwifi/internal/logging"
)

// Command flags
var (
	outputFormat string
	rescan       bool
)

func init() {
	listCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format (table, json)")
	listCmd.Flags().BoolVar(&rescan, "rescan", false, "Ask NetworkManager to rescan before listing")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List nearby Wi-Fi networks",
	Example: `  # Show the current scan results
  nmwifi list

  # Rescan first and print JSON
  nmwifi list --rescan --format json`,
	RunE: runList,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show radio state, active connection and wireless devices",
	RunE:  runStatus,
}

func runList(cmd *cobra.Command, args []string) error {
	switch outputFormat {
	case "table", "json":
	default:
		return fmt.Errorf("unknown format %q (want table or json)", outputFormat)
	}

	client, _, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()
	ctx := commandContext(cmd)

	if rescan {
		client.Rescan(ctx)
	}
	return printNetworks(cmd.OutOrStdout(), client.ListNetworks(ctx), client.ConnectedNetwork(ctx), outputFormat)
}

type networkJSON struct {
	Name      string `json:"name"`
	Protected bool   `json:"protected"`
	Signal    int    `json:"signal"`
	Connected bool   `json:"connected"`
}

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// printNetworks writes networks as a bordered table or as JSON.
func printNetworks(w io.Writer, networks []gonetworkmanager.Network, connected, format string) error {
	if format == "json" {
		out := make([]networkJSON, 0, len(networks))
		for _, n := range networks {
			out = append(out, networkJSON{
				Name:      n.Name,
				Protected: n.Protected,
				Signal:    n.Signal,
				Connected: connected != "" && n.Name == connected,
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(networks) == 0 {
		_, err := fmt.Fprintln(w, "No networks found.")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "SIGNAL", "SECURITY", "ACTIVE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	for _, n := range networks {
		security := "open"
		if n.Protected {
			security = "protected"
		}
		active := ""
		if connected != "" && n.Name == connected {
			active = "*"
		}
		t.Row(n.Name, strconv.Itoa(n.Signal)+"% "+strings.Repeat("|", n.Signal/20), security, active)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, cfg, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()
	ctx := commandContext(cmd)

	s := status{
		WifiEnabled: client.RadioEnabled(ctx),
		Connected:   client.ConnectedNetwork(ctx),
		Interface:   cfg.Interface,
	}
	if s.Connected != "" {
		s.IPAddress = client.ConnectedIPAddress(ctx)
	}
	devices, err := client.DeviceStatus(ctx)
	if err != nil {
		logging.Error("device status failed", zap.Error(err))
		return err
	}
	s.Devices = devices
	return printStatus(cmd.OutOrStdout(), s)
}

type status struct {
	WifiEnabled bool
	Connected   string
	IPAddress   string
	// Interface limits Devices to one device name when set.
	Interface string
	Devices   []gonetworkmanager.DeviceStatus
}

func printStatus(w io.Writer, s status) error {
	radio := "off"
	if s.WifiEnabled {
		radio = "on"
	}
	connection := "(none)"
	if s.Connected != "" {
		connection = s.Connected
		if s.IPAddress != "" {
			connection += " - " + s.IPAddress
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "WiFi:        %s\n", radio)
	fmt.Fprintf(&b, "Connection:  %s\n", connection)
	for _, d := range s.Devices {
		if s.Interface != "" {
			if d.Device != s.Interface {
				continue
			}
		} else if d.Type != gonetworkmanager.DeviceTypeWifi {
			continue
		}
		conn := d.Connection
		if conn == "" {
			conn = "--"
		}
		fmt.Fprintf(&b, "Device:      %s (%s, %s)\n", d.Device, d.State, conn)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
