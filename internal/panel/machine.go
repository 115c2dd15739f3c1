package panel

import (
	"context"

	"nmwifi/gonetworkmanager"
)

// KeyKind classifies a key press independent of the terminal library.
type KeyKind int

const (
	KeyRune KeyKind = iota
	KeyUp
	KeyDown
	KeyEnter
	KeyEscape
	KeyOther
)

// Key is one key press.
type Key struct {
	Kind KeyKind
	Rune rune
}

// Rune builds a printable key press.
func Rune(r rune) Key {
	return Key{Kind: KeyRune, Rune: r}
}

func (k Key) is(runes ...rune) bool {
	if k.Kind != KeyRune {
		return false
	}
	for _, r := range runes {
		if k.Rune == r {
			return true
		}
	}
	return false
}

// Options tweak machine behaviour.
type Options struct {
	// ConfirmForget asks for y/n before deleting a profile.
	ConfirmForget bool
}

// ConnectRequest is a connect attempt waiting to run.
type ConnectRequest struct {
	Network  gonetworkmanager.Network
	Password string
}

// ConnectOutcome is the result of running a ConnectRequest.
type ConnectOutcome struct {
	Network gonetworkmanager.Network
	Err     error
	// Connected and IPAddress are re-queried after a successful connect.
	Connected string
	IPAddress string
}

// Attempt runs req against f. It blocks until nmcli returns and touches no
// machine state, so it can run inside a tea.Cmd.
func Attempt(ctx context.Context, f Facade, req ConnectRequest) ConnectOutcome {
	out := ConnectOutcome{Network: req.Network}
	if err := f.Connect(ctx, req.Network.Name, req.Password); err != nil {
		out.Err = err
		return out
	}
	out.Connected = f.ConnectedNetwork(ctx)
	if out.Connected != "" {
		out.IPAddress = f.ConnectedIPAddress(ctx)
	}
	return out
}

// Machine is the interaction state machine. It owns the only mutable State.
type Machine struct {
	facade   Facade
	opts     Options
	state    State
	dialog   Dialog
	pageSize int
	pending  *ConnectRequest
}

// New creates a machine in browsing mode with an empty state. Call Refresh
// before the first frame.
func New(f Facade, opts Options) *Machine {
	return &Machine{
		facade:   f,
		opts:     opts,
		dialog:   Dialog{Mode: ModeBrowsing},
		pageSize: 1,
	}
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	s := m.state
	s.Networks = append([]gonetworkmanager.Network(nil), m.state.Networks...)
	return s
}

// Dialog returns the active modal, Mode is ModeBrowsing when none is open.
func (m *Machine) Dialog() Dialog { return m.dialog }

// Mode is shorthand for Dialog().Mode.
func (m *Machine) Mode() Mode { return m.dialog.Mode }

// PageSize is the number of list rows that currently fit on screen.
func (m *Machine) PageSize() int { return m.pageSize }

// SetPageSize records how many rows fit and re-clamps the viewport.
func (m *Machine) SetPageSize(n int) {
	if n < 1 {
		n = 1
	}
	m.pageSize = n
	m.state.clamp(n)
}

// Refresh rebuilds the whole state from the facade.
func (m *Machine) Refresh(ctx context.Context) {
	m.state.WifiEnabled = m.facade.RadioEnabled(ctx)
	m.refreshConnection(ctx)
	m.state.Networks = m.facade.ListNetworks(ctx)
	m.state.clamp(m.pageSize)
}

func (m *Machine) refreshConnection(ctx context.Context) {
	m.state.Connected = m.facade.ConnectedNetwork(ctx)
	m.state.IPAddress = ""
	if m.state.Connected != "" && m.state.WifiEnabled {
		m.state.IPAddress = m.facade.ConnectedIPAddress(ctx)
	}
}

func (m *Machine) browse() {
	m.dialog = Dialog{Mode: ModeBrowsing}
}

// HandleKey consumes one key press. Facade calls other than connect run
// synchronously; a connect attempt is left pending in ModeConnecting.
func (m *Machine) HandleKey(ctx context.Context, k Key) {
	switch m.dialog.Mode {
	case ModeBrowsing:
		m.handleBrowsing(ctx, k)

	case ModeConnectPrompt:
		if k.Kind == KeyEscape {
			m.browse()
			return
		}
		m.chooseConnectPath(ctx)

	case ModePasswordEntry:
		if k.Kind == KeyEscape {
			m.browse()
		}

	case ModeConnecting:
		// No cancellation while nmcli runs.

	case ModeConnectResult:
		if k.Kind == KeyEnter || k.Kind == KeyEscape {
			m.state.resetCursor()
			m.browse()
		}

	case ModeForgetResult:
		if k.Kind == KeyEnter || k.Kind == KeyEscape {
			m.state.resetCursor()
		}
		m.browse()

	case ModeOffConfirm:
		switch {
		case k.is('y', 'Y'):
			m.facade.SetRadioEnabled(ctx, false)
			m.state.WifiEnabled = false
			m.state.Connected = ""
			m.state.IPAddress = ""
			m.state.resetCursor()
			m.browse()
		case k.is('n', 'N'), k.Kind == KeyEscape:
			m.browse()
		}

	case ModeForgetConfirm:
		switch {
		case k.is('y', 'Y'):
			m.forget(ctx, m.dialog.Network)
		case k.is('n', 'N'), k.Kind == KeyEscape:
			m.browse()
		}

	case ModeForgetRefused:
		if k.Kind == KeyEnter {
			m.state.resetCursor()
		}
		m.browse()

	case ModeHelp:
		m.browse()
	}
}

func (m *Machine) handleBrowsing(ctx context.Context, k Key) {
	switch {
	case k.Kind == KeyUp:
		if m.state.Selected > 0 {
			m.state.Selected--
			if m.state.Selected < m.state.ViewportStart {
				m.state.ViewportStart = m.state.Selected
			}
		}

	case k.Kind == KeyDown:
		if m.state.Selected < len(m.state.Networks)-1 {
			m.state.Selected++
			if m.state.Selected >= m.state.ViewportStart+m.pageSize {
				m.state.ViewportStart++
			}
		}

	case k.Kind == KeyEnter:
		if !m.state.WifiEnabled {
			return
		}
		if network, ok := m.state.SelectedNetwork(); ok {
			m.dialog = Dialog{Mode: ModeConnectPrompt, Network: network}
		}

	case k.is('o', 'O'):
		if m.state.WifiEnabled {
			m.dialog = Dialog{Mode: ModeOffConfirm}
			return
		}
		m.facade.SetRadioEnabled(ctx, true)
		m.state.WifiEnabled = true
		m.refreshConnection(ctx)
		m.state.Networks = m.facade.ListNetworks(ctx)
		m.state.resetCursor()

	case k.is('s', 'S'):
		m.facade.Rescan(ctx)
		m.state.Networks = m.facade.ListNetworks(ctx)
		m.state.clamp(m.pageSize)

	case k.is('f', 'F'):
		if !m.state.WifiEnabled {
			return
		}
		network, ok := m.state.SelectedNetwork()
		if !ok {
			return
		}
		switch {
		case network.Name == m.state.Connected:
			m.dialog = Dialog{Mode: ModeForgetRefused, Network: network}
		case m.opts.ConfirmForget:
			m.dialog = Dialog{Mode: ModeForgetConfirm, Network: network}
		default:
			m.forget(ctx, network)
		}

	case k.is('h'):
		m.dialog = Dialog{Mode: ModeHelp}

	case k.is('q', 'Q'):
		m.dialog = Dialog{Mode: ModeExit}
	}
}

func (m *Machine) forget(ctx context.Context, network gonetworkmanager.Network) {
	m.facade.Forget(ctx, network.Name)
	m.refreshConnection(ctx)
	m.dialog = Dialog{Mode: ModeForgetResult, Network: network}
}

// chooseConnectPath runs when the connect prompt is confirmed. Protected
// networks with a saved profile reconnect without asking for a password.
func (m *Machine) chooseConnectPath(ctx context.Context) {
	network := m.dialog.Network
	if network.Protected && !m.facade.HasSavedProfile(ctx, network.Name) {
		m.dialog = Dialog{Mode: ModePasswordEntry, Network: network}
		return
	}
	m.beginConnect(network, "")
}

// SubmitPassword finishes password entry. An empty password is rejected and
// the machine stays in ModePasswordEntry.
func (m *Machine) SubmitPassword(password string) {
	if m.dialog.Mode != ModePasswordEntry {
		return
	}
	if password == "" {
		m.dialog.Hint = "Password cannot be empty"
		return
	}
	m.beginConnect(m.dialog.Network, password)
}

func (m *Machine) beginConnect(network gonetworkmanager.Network, password string) {
	m.pending = &ConnectRequest{Network: network, Password: password}
	m.dialog = Dialog{Mode: ModeConnecting, Network: network}
}

// PendingConnect returns the attempt to run while in ModeConnecting. The
// request is handed out once.
func (m *Machine) PendingConnect() (ConnectRequest, bool) {
	if m.pending == nil || m.dialog.Mode != ModeConnecting {
		return ConnectRequest{}, false
	}
	req := *m.pending
	m.pending = nil
	return req, true
}

// Resolve applies a finished attempt and shows its result.
func (m *Machine) Resolve(out ConnectOutcome) {
	if m.dialog.Mode != ModeConnecting {
		return
	}
	if out.Err == nil {
		m.state.Connected = out.Connected
		m.state.IPAddress = out.IPAddress
	}
	m.dialog = Dialog{Mode: ModeConnectResult, Network: out.Network, Err: out.Err}
}
