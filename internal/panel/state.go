// Package panel holds the application state of the Wi-Fi panel and the
// state machine that turns key presses into facade calls and new state.
// It knows nothing about the terminal; internal/tui drives it.
package panel

import (
	"context"

	"nmwifi/gonetworkmanager"
)

// Facade is the set of network operations the panel needs. Apart from
// Connect, implementations swallow their own failures and return zero values.
type Facade interface {
	RadioEnabled(ctx context.Context) bool
	ConnectedNetwork(ctx context.Context) string
	ConnectedIPAddress(ctx context.Context) string
	ListNetworks(ctx context.Context) []gonetworkmanager.Network
	HasSavedProfile(ctx context.Context, name string) bool
	Rescan(ctx context.Context)
	SetRadioEnabled(ctx context.Context, enabled bool)
	Connect(ctx context.Context, name, password string) error
	Forget(ctx context.Context, name string)
}

// State is the snapshot rendered on every frame.
type State struct {
	WifiEnabled bool
	// Connected is the active connection name; empty when not connected.
	Connected string
	// IPAddress belongs to Connected; empty when unknown.
	IPAddress string
	Networks  []gonetworkmanager.Network

	Selected      int
	ViewportStart int
}

// SelectedNetwork returns the network under the cursor.
func (s State) SelectedNetwork() (gonetworkmanager.Network, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Networks) {
		return gonetworkmanager.Network{}, false
	}
	return s.Networks[s.Selected], true
}

// Visible returns the networks inside the viewport.
func (s State) Visible(pageSize int) []gonetworkmanager.Network {
	if pageSize < 1 {
		pageSize = 1
	}
	if s.ViewportStart >= len(s.Networks) {
		return nil
	}
	end := s.ViewportStart + pageSize
	if end > len(s.Networks) {
		end = len(s.Networks)
	}
	return s.Networks[s.ViewportStart:end]
}

func (s *State) resetCursor() {
	s.Selected = 0
	s.ViewportStart = 0
}

// clamp restores 0 <= Selected < len(Networks) and
// ViewportStart <= Selected < ViewportStart+pageSize.
func (s *State) clamp(pageSize int) {
	if pageSize < 1 {
		pageSize = 1
	}
	if len(s.Networks) == 0 {
		s.resetCursor()
		return
	}
	if s.Selected >= len(s.Networks) {
		s.Selected = len(s.Networks) - 1
	}
	if s.Selected < 0 {
		s.Selected = 0
	}
	if s.ViewportStart > s.Selected {
		s.ViewportStart = s.Selected
	}
	if s.Selected >= s.ViewportStart+pageSize {
		s.ViewportStart = s.Selected - pageSize + 1
	}
	if s.ViewportStart < 0 {
		s.ViewportStart = 0
	}
}

// Mode is the active screen.
type Mode int

const (
	ModeBrowsing Mode = iota
	ModeConnectPrompt
	ModePasswordEntry
	ModeConnecting
	ModeConnectResult
	ModeOffConfirm
	ModeForgetConfirm
	ModeForgetRefused
	ModeForgetResult
	ModeHelp
	ModeExit
)

func (m Mode) String() string {
	names := []string{
		"Browsing",
		"ConnectPrompt",
		"PasswordEntry",
		"Connecting",
		"ConnectResult",
		"OffConfirm",
		"ForgetConfirm",
		"ForgetRefused",
		"ForgetResult",
		"Help",
		"Exit",
	}
	if int(m) >= 0 && int(m) < len(names) {
		return names[m]
	}
	return "Unknown"
}

// Dialog is the transient state of the active modal. It is discarded when
// the panel returns to browsing.
type Dialog struct {
	Mode    Mode
	Network gonetworkmanager.Network
	// Err is the connect failure shown by ModeConnectResult; nil on success.
	Err error
	// Hint is an inline message, e.g. a rejected empty password.
	Hint string
}
