package gonetworkmanager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Network is one scanned access point as reported by nmcli.
type Network struct {
	Name      string
	Protected bool
	// Signal is a percentage, 0-100.
	Signal int
}

// DeviceStatus is one row of `nmcli device`.
type DeviceStatus struct {
	Device     string
	Type       string
	State      string
	Connection string
}

// Client implements the Wi-Fi operations on top of nmcli. Apart from Connect
// and DeviceStatus, every operation logs its failure and degrades to a zero
// value so callers never have to handle nmcli errors.
type Client struct {
	runner Runner
	logger *zap.Logger
	iface  string
}

// Option configures a Client.
type Option func(*Client)

// WithInterface pins the wireless device used for the IP lookup.
func WithInterface(name string) Option {
	return func(c *Client) {
		c.iface = strings.TrimSpace(name)
	}
}

// NewClient creates a Client that runs nmcli through runner.
func NewClient(runner Runner, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{runner: runner, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	return c.runner.Run(ctx, args...)
}

func (c *Client) degrade(op string, err error) {
	var unavailable *UnavailableError
	var parseErr *ParseError
	kind := "call_failed"
	switch {
	case errors.As(err, &unavailable):
		kind = "unavailable"
	case errors.As(err, &parseErr):
		kind = "parse_failure"
	}
	c.logger.Warn("nmcli operation degraded",
		zap.String("op", op),
		zap.String("kind", kind),
		zap.Error(err),
	)
}

// CheckAvailable verifies that nmcli can be executed.
func (c *Client) CheckAvailable(ctx context.Context) error {
	if _, err := c.run(ctx, "--version"); err != nil {
		return fmt.Errorf("'nmcli' is not installed or not runnable: %w", err)
	}
	return nil
}

// RadioEnabled reports whether the Wi-Fi radio is on. Unknown counts as off.
func (c *Client) RadioEnabled(ctx context.Context) bool {
	out, err := c.run(ctx, "radio", "wifi")
	if err != nil {
		c.degrade("radio_status", err)
		return false
	}
	return strings.TrimSpace(out) == "enabled"
}

// SetRadioEnabled turns the Wi-Fi radio on or off.
func (c *Client) SetRadioEnabled(ctx context.Context, enabled bool) {
	state := "off"
	if enabled {
		state = "on"
	}
	c.logger.Info("setting wifi radio", zap.String("state", state))
	if _, err := c.run(ctx, "radio", "wifi", state); err != nil {
		c.degrade("radio_"+state, err)
	}
}

// ConnectedNetwork returns the name of the active wireless connection, or ""
// when there is none.
func (c *Client) ConnectedNetwork(ctx context.Context) string {
	out, err := c.run(ctx, "-t", "-f", NmcliFieldConnectionName+","+NmcliFieldConnectionType, "connection", "show", "--active")
	if err != nil {
		c.degrade("active_connection", err)
		return ""
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitTerseLine(line)
		if len(fields) < 2 {
			c.degrade("active_connection", &ParseError{Command: "connection show --active", Line: line, Err: errors.New("too few fields")})
			return ""
		}
		switch strings.TrimSpace(fields[1]) {
		case ConnectionTypeWireless, DeviceTypeWifi:
			return fields[0]
		}
	}
	return ""
}

// ConnectedIPAddress returns the IPv4 address of the wireless device without
// its prefix length, or "" if none is bound.
func (c *Client) ConnectedIPAddress(ctx context.Context) string {
	out, err := c.run(ctx, "-t", "-f", "GENERAL.DEVICE,GENERAL.TYPE,IP4.ADDRESS", "device", "show")
	if err != nil {
		c.degrade("ip_address", err)
		return ""
	}
	records, err := parseNmcliMultilineOutput(out)
	if err != nil {
		c.degrade("ip_address", err)
		return ""
	}
	for _, rec := range records {
		device := rec[NmcliFieldGeneralDevice]
		if c.iface != "" {
			if device != c.iface {
				continue
			}
		} else if rec[NmcliFieldGeneralType] != DeviceTypeWifi {
			continue
		}
		addr := strings.TrimSpace(rec[NmcliFieldIP4Address1])
		if addr == "" {
			return ""
		}
		ip, _, _ := strings.Cut(addr, "/")
		return ip
	}
	return ""
}

// ListNetworks returns the networks nmcli currently knows about. Hidden
// SSIDs are omitted.
func (c *Client) ListNetworks(ctx context.Context) []Network {
	out, err := c.run(ctx, "-f", NmcliFieldWifiSSID+","+NmcliFieldWifiSecurity+","+NmcliFieldWifiSignal, "device", "wifi", "list")
	if err != nil {
		c.degrade("wifi_list", err)
		return []Network{}
	}
	networks, err := parseWifiTable(out)
	if err != nil {
		c.degrade("wifi_list", err)
		return []Network{}
	}
	c.logger.Debug("listed wifi networks", zap.Int("count", len(networks)))
	return networks
}

// Rescan asks NetworkManager to refresh its scan results.
func (c *Client) Rescan(ctx context.Context) {
	if _, err := c.run(ctx, "device", "wifi", "rescan"); err != nil {
		c.degrade("rescan", err)
	}
}

// HasSavedProfile reports whether a connection profile with exactly this
// name exists.
func (c *Client) HasSavedProfile(ctx context.Context, name string) bool {
	out, err := c.run(ctx, "-t", "-f", NmcliFieldConnectionName, "connection", "show")
	if err != nil {
		c.degrade("saved_profiles", err)
		return false
	}
	for _, line := range strings.Split(out, "\n") {
		fields := splitTerseLine(line)
		if len(fields) > 0 && fields[0] == name {
			return true
		}
	}
	return false
}

// Connect joins a network. With a password it connects with credentials;
// without one it brings up the saved profile of that name if one exists and
// otherwise connects by SSID. Success is nmcli's exit status alone.
func (c *Client) Connect(ctx context.Context, name, password string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("network name cannot be empty")
	}
	c.logger.Info("connecting", zap.String("ssid", name), zap.Bool("with_password", password != ""))

	var err error
	switch {
	case password != "":
		_, err = c.run(ctx, "device", "wifi", "connect", name, "password", password)
	case c.HasSavedProfile(ctx, name):
		_, err = c.run(ctx, "connection", "up", name)
	default:
		_, err = c.run(ctx, "device", "wifi", "connect", name)
	}
	if err != nil {
		c.logger.Warn("connect failed", zap.String("ssid", name), zap.Error(err))
		return fmt.Errorf("connect to %q: %w", name, err)
	}
	c.logger.Info("connected", zap.String("ssid", name))
	return nil
}

// Forget deletes the connection profile with this name.
func (c *Client) Forget(ctx context.Context, name string) {
	c.logger.Info("forgetting profile", zap.String("name", name))
	if _, err := c.run(ctx, "connection", "delete", name); err != nil {
		c.degrade("forget", err)
	}
}

// DeviceStatus lists every network device with its state.
func (c *Client) DeviceStatus(ctx context.Context) ([]DeviceStatus, error) {
	out, err := c.run(ctx, "-t", "-f",
		NmcliFieldDeviceStatusDev+","+NmcliFieldConnectionType+","+NmcliFieldDeviceState+","+NmcliFieldDeviceConn,
		"device")
	if err != nil {
		return nil, fmt.Errorf("failed to get device status: %w", err)
	}
	return parseDeviceStatus(out)
}
