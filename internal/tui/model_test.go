package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nmwifi/gonetworkmanager"
	"nmwifi/internal/panel"
)

type connectCall struct {
	name     string
	password string
}

type fakeFacade struct {
	enabled    bool
	connected  string
	ip         string
	networks   []gonetworkmanager.Network
	saved      map[string]bool
	connectErr error

	connects []connectCall
	forgets  []string
}

func (f *fakeFacade) RadioEnabled(context.Context) bool       { return f.enabled }
func (f *fakeFacade) ConnectedNetwork(context.Context) string { return f.connected }
func (f *fakeFacade) ConnectedIPAddress(context.Context) string {
	return f.ip
}
func (f *fakeFacade) ListNetworks(context.Context) []gonetworkmanager.Network {
	return append([]gonetworkmanager.Network{}, f.networks...)
}
func (f *fakeFacade) HasSavedProfile(_ context.Context, name string) bool { return f.saved[name] }
func (f *fakeFacade) Rescan(context.Context)                              {}
func (f *fakeFacade) SetRadioEnabled(_ context.Context, enabled bool)     { f.enabled = enabled }
func (f *fakeFacade) Connect(_ context.Context, name, password string) error {
	f.connects = append(f.connects, connectCall{name, password})
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = name
	return nil
}
func (f *fakeFacade) Forget(_ context.Context, name string) { f.forgets = append(f.forgets, name) }

func newFacade() *fakeFacade {
	return &fakeFacade{
		enabled:   true,
		connected: "A",
		ip:        "192.168.1.20",
		networks: []gonetworkmanager.Network{
			{Name: "A", Signal: 80},
			{Name: "B", Protected: true, Signal: 60},
		},
		saved: map[string]bool{"A": true},
	}
}

func newModel(t *testing.T, f *fakeFacade, opts Options) Model {
	t.Helper()
	m := New(context.Background(), f, opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return next.(Model)
}

func press(m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

// collect executes cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func feed(m Model, cmd tea.Cmd) Model {
	for _, msg := range collect(cmd) {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_InitialView(t *testing.T) {
	m := newModel(t, newFacade(), Options{})

	view := m.View()
	assert.Contains(t, view, "Connected to: A - 192.168.1.20")
	assert.Contains(t, view, "Available 2 Networks:")
	assert.Contains(t, view, "[P]")
	assert.Contains(t, view, "[*]")
	assert.Nil(t, m.Init())
}

func TestModel_ConnectWithPassword(t *testing.T) {
	f := newFacade()
	m := newModel(t, f, Options{})

	m, _ = press(m, keyDown, keyEnter)
	require.Equal(t, panel.ModeConnectPrompt, m.machine.Mode())
	assert.Contains(t, m.View(), "Press Esc to return or any key to connect.")

	m, _ = press(m, runes("x"))
	require.Equal(t, panel.ModePasswordEntry, m.machine.Mode())

	m, _ = press(m, runes("secret"))
	assert.Contains(t, m.View(), "secret")

	m, cmd := press(m, keyEnter)
	require.Equal(t, panel.ModeConnecting, m.machine.Mode())
	require.NotNil(t, cmd)

	// keys are ignored while nmcli runs
	m, _ = press(m, runes("q"), keyEsc)
	assert.Equal(t, panel.ModeConnecting, m.machine.Mode())

	m = feed(m, cmd)
	require.Equal(t, panel.ModeConnectResult, m.machine.Mode())
	assert.Equal(t, []connectCall{{"B", "secret"}}, f.connects)
	assert.Contains(t, m.View(), "Connected!")

	m, _ = press(m, keyEnter)
	assert.Equal(t, panel.ModeBrowsing, m.machine.Mode())
	assert.Contains(t, m.View(), "Connected to: B")
	assert.Equal(t, 0, m.machine.State().Selected)
}

func TestModel_ConnectFailure(t *testing.T) {
	f := newFacade()
	f.connectErr = errors.New("Secrets were required, but not provided")
	m := newModel(t, f, Options{})

	m, _ = press(m, keyDown, keyEnter, runes("x"), runes("wrong"))
	m, cmd := press(m, keyEnter)
	m = feed(m, cmd)

	view := m.View()
	assert.Contains(t, view, "Failed to connect!")
	assert.Contains(t, view, "Secrets were required")
	assert.NotContains(t, view, "wrong")

	m, _ = press(m, keyEsc)
	assert.Contains(t, m.View(), "Connected to: A")
}

func TestModel_MaskedPassword(t *testing.T) {
	m := newModel(t, newFacade(), Options{MaskPassword: true})

	m, _ = press(m, keyDown, keyEnter, runes("x"), runes("secret"))

	assert.NotContains(t, m.View(), "secret")
	assert.Equal(t, "secret", m.password.Value())
}

func TestModel_EmptyPasswordRejected(t *testing.T) {
	f := newFacade()
	m := newModel(t, f, Options{})

	m, cmd := press(m, keyDown, keyEnter, runes("x"), keyEnter)

	assert.Equal(t, panel.ModePasswordEntry, m.machine.Mode())
	assert.Contains(t, m.View(), "Password cannot be empty")
	assert.Nil(t, cmd)
	assert.Empty(t, f.connects)
}

func TestModel_EscapeClearsPassword(t *testing.T) {
	m := newModel(t, newFacade(), Options{})

	m, _ = press(m, keyDown, keyEnter, runes("x"), runes("abc"), keyEsc)
	require.Equal(t, panel.ModeBrowsing, m.machine.Mode())

	m, _ = press(m, keyEnter, runes("x"))
	require.Equal(t, panel.ModePasswordEntry, m.machine.Mode())
	assert.Equal(t, "", m.password.Value())
}

func TestModel_SavedProfileSkipsPassword(t *testing.T) {
	f := newFacade()
	f.saved["B"] = true
	m := newModel(t, f, Options{})

	m, cmd := press(m, keyDown, keyEnter, runes("x"))
	require.Equal(t, panel.ModeConnecting, m.machine.Mode())

	feed(m, cmd)
	assert.Equal(t, []connectCall{{"B", ""}}, f.connects)
}

func TestModel_Quit(t *testing.T) {
	m := newModel(t, newFacade(), Options{})

	m, cmd := press(m, runes("q"))

	assert.Equal(t, panel.ModeExit, m.machine.Mode())
	assert.Contains(t, collect(cmd), tea.Msg(tea.QuitMsg{}))
}

func TestModel_ForgetWithConfirmation(t *testing.T) {
	f := newFacade()
	m := newModel(t, f, Options{ConfirmForget: true})

	m, _ = press(m, runes("f"))
	assert.Contains(t, m.View(), "Cannot forget A")
	m, _ = press(m, keyEnter, keyDown, runes("f"))
	assert.Contains(t, m.View(), "Forget network B?")

	m, _ = press(m, runes("y"))
	assert.Equal(t, []string{"B"}, f.forgets)
	assert.Contains(t, m.View(), "Forgot network: B")
}

func TestModel_WindowSizeSetsPageSize(t *testing.T) {
	m := newModel(t, newFacade(), Options{MaxRows: 3})
	assert.Equal(t, 3, m.machine.PageSize())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m = next.(Model)
	assert.Equal(t, 1, m.machine.PageSize())
}

func TestModel_WifiOffAndOn(t *testing.T) {
	f := newFacade()
	m := newModel(t, f, Options{})

	m, _ = press(m, runes("o"))
	assert.Contains(t, m.View(), "(Y/N)")
	m, _ = press(m, runes("y"))

	view := m.View()
	assert.Contains(t, view, "WiFi: Off")
	assert.Contains(t, view, wifiOffNotice)
	assert.False(t, f.enabled)

	m, _ = press(m, runes("O"))
	assert.True(t, f.enabled)
	assert.Contains(t, m.View(), "Available 2 Networks:")
}

func TestKeyTranslate(t *testing.T) {
	k := defaultKeyBindings
	assert.Equal(t, panel.Key{Kind: panel.KeyUp}, k.translate(tea.KeyMsg{Type: tea.KeyUp}))
	assert.Equal(t, panel.Key{Kind: panel.KeyDown}, k.translate(keyDown))
	assert.Equal(t, panel.Key{Kind: panel.KeyEnter}, k.translate(keyEnter))
	assert.Equal(t, panel.Key{Kind: panel.KeyEscape}, k.translate(keyEsc))
	assert.Equal(t, panel.Rune('s'), k.translate(runes("s")))
	assert.Equal(t, panel.Key{Kind: panel.KeyOther}, k.translate(tea.KeyMsg{Type: tea.KeyTab}))
	assert.Equal(t, panel.Key{Kind: panel.KeyOther}, k.translate(runes("ab")))
}
