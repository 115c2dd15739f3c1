// Package tui renders the Wi-Fi panel with bubbletea and feeds key presses
// into the panel state machine.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"nmwifi/internal/logging"
	"nmwifi/internal/panel"
)

// Options configure the terminal front end.
type Options struct {
	// MaxRows caps the visible list rows. Zero fills the terminal.
	MaxRows int
	// MaskPassword hides typed password characters.
	MaskPassword bool
	// ConfirmForget asks before deleting a saved profile.
	ConfirmForget bool
}

type connectDoneMsg struct {
	outcome panel.ConnectOutcome
}

// Model is the bubbletea model of the panel.
type Model struct {
	ctx     context.Context
	facade  panel.Facade
	machine *panel.Machine
	opts    Options
	logger  *zap.Logger

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	password textinput.Model

	width  int
	height int
}

// New builds the model and loads the initial state from facade.
func New(ctx context.Context, facade panel.Facade, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "password"
	ti.Width = 32
	if opts.MaskPassword {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}

	machine := panel.New(facade, panel.Options{ConfirmForget: opts.ConfirmForget})
	machine.Refresh(ctx)

	return Model{
		ctx:      ctx,
		facade:   facade,
		machine:  machine,
		opts:     opts,
		logger:   logging.Named("tui"),
		keys:     defaultKeyBindings,
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Line), spinner.WithStyle(connectingStyle)),
		password: ti,
	}
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, facade panel.Facade, opts Options) error {
	p := tea.NewProgram(New(ctx, facade, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func connectCmd(ctx context.Context, f panel.Facade, req panel.ConnectRequest) tea.Cmd {
	return func() tea.Msg {
		return connectDoneMsg{outcome: panel.Attempt(ctx, f, req)}
	}
}

// resize recomputes how many rows fit. The header height depends on state,
// so this runs around every transition as well as on window changes.
func (m Model) resize() {
	m.machine.SetPageSize(pageSize(m.height, m.machine.State(), m.help.View(m.keys), m.opts.MaxRows))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if m.machine.Mode() != panel.ModeConnecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case connectDoneMsg:
		if msg.outcome.Err != nil {
			m.logger.Warn("connect failed", zap.String("network", msg.outcome.Network.Name), zap.Error(msg.outcome.Err))
		} else {
			m.logger.Info("connected", zap.String("network", msg.outcome.Connected), zap.String("ip", msg.outcome.IPAddress))
		}
		m.machine.Resolve(msg.outcome)
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.machine.Mode() == panel.ModePasswordEntry {
		var cmd tea.Cmd
		m.password, cmd = m.password.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.resize()
	before := m.machine.Mode()
	var cmds []tea.Cmd

	if before == panel.ModePasswordEntry {
		switch {
		case key.Matches(msg, m.keys.Select):
			m.machine.SubmitPassword(m.password.Value())
		case key.Matches(msg, m.keys.Back):
			m.machine.HandleKey(m.ctx, panel.Key{Kind: panel.KeyEscape})
		default:
			var cmd tea.Cmd
			m.password, cmd = m.password.Update(msg)
			cmds = append(cmds, cmd)
		}
	} else {
		m.machine.HandleKey(m.ctx, m.keys.translate(msg))
	}

	after := m.machine.Mode()
	if after != before {
		m.logger.Debug("mode change", zap.Stringer("from", before), zap.Stringer("to", after))
	}
	switch {
	case after == panel.ModePasswordEntry && before != panel.ModePasswordEntry:
		m.password.Reset()
		cmds = append(cmds, m.password.Focus())
	case before == panel.ModePasswordEntry && after != panel.ModePasswordEntry:
		m.password.Blur()
		m.password.Reset()
	}

	if req, ok := m.machine.PendingConnect(); ok {
		cmds = append(cmds, connectCmd(m.ctx, m.facade, req), m.spinner.Tick)
	}
	if after == panel.ModeExit {
		cmds = append(cmds, tea.Quit)
	}

	m.resize()
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	return render(m.machine.State(), m.machine.Dialog(), m.machine.PageSize(), layout{
		width:    m.width,
		height:   m.height,
		spinner:  m.spinner.View(),
		password: m.password.View(),
		footer:   m.help.View(m.keys),
	})
}
