// Package tui renders a Provider's session state in the terminal and drives
// its actions from the keyboard.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	authstate "github.com/goliatone/go-auth-state"
)

// Session is the part of a Provider the model needs.
type Session interface {
	State() authstate.State
	Login(ctx context.Context, email, password string) (*authstate.SessionResult, error)
	Register(ctx context.Context, email, password string) (*authstate.SessionResult, error)
	Logout(ctx context.Context)
}

// Credentials are used by the login and register keys.
type Credentials struct {
	Email    string
	Password string
}

// StateMsg carries a snapshot published by the provider.
type StateMsg struct {
	State authstate.State
}

type actionResultMsg struct {
	action authstate.Action
	err    error
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Model is the bubbletea model for the session view.
type Model struct {
	session  Session
	creds    Credentials
	state    authstate.State
	status   string
	err      error
	quitting bool
}

// New builds a Model seeded with the session's current state.
func New(session Session, creds Credentials) Model {
	return Model{
		session: session,
		creds:   creds,
		state:   session.State(),
	}
}

// State returns the last snapshot the model rendered.
func (m Model) State() authstate.State {
	return m.state
}

// Err returns the error of the last failed action.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		m.state = msg.State
		return m, nil

	case actionResultMsg:
		m.state = m.session.State()
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("%s failed", msg.action)
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("%s ok", msg.action)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "l":
			return m.start(authstate.ActionLogin)
		case "r":
			return m.start(authstate.ActionRegister)
		case "o":
			return m.start(authstate.ActionLogout)
		}
	}

	return m, nil
}

func (m Model) start(action authstate.Action) (tea.Model, tea.Cmd) {
	m.status = fmt.Sprintf("%s...", action)
	m.err = nil

	session, creds := m.session, m.creds
	return m, func() tea.Msg {
		ctx := context.Background()
		var err error
		switch action {
		case authstate.ActionLogin:
			_, err = session.Login(ctx, creds.Email, creds.Password)
		case authstate.ActionRegister:
			_, err = session.Register(ctx, creds.Email, creds.Password)
		case authstate.ActionLogout:
			session.Logout(ctx)
		}
		return actionResultMsg{action: action, err: err}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("auth state"))
	b.WriteString("\n\n")

	user := "anonymous"
	if m.state.User != nil {
		user = fmt.Sprintf("%s <%s>", m.state.User.Name, m.state.User.Email)
	}
	b.WriteString(row("user", user))
	b.WriteString(row("loading", yesNo(m.state.Loading)))
	b.WriteString(row("authenticated", yesNo(m.state.IsAuthenticated)))

	if m.status != "" {
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errStyle.Render(m.status + ": " + m.err.Error()))
		} else {
			b.WriteString(okStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("l login  r register  o logout  q quit"))

	return boxStyle.Render(b.String()) + "\n"
}

func row(label, value string) string {
	return labelStyle.Render(label) + value + "\n"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// Provider is a Session that also publishes snapshots.
type Provider interface {
	Session
	OnChange(fn func(authstate.State)) func()
}

// Run starts the program and forwards every published snapshot to it until
// the user quits or ctx is done.
func Run(ctx context.Context, p Provider, creds Credentials, opts ...tea.ProgramOption) error {
	prog := tea.NewProgram(New(p, creds), opts...)

	unsubscribe := p.OnChange(func(st authstate.State) {
		prog.Send(StateMsg{State: st})
	})
	defer unsubscribe()

	stop := context.AfterFunc(ctx, prog.Quit)
	defer stop()

	_, err := prog.Run()
	return err
}
