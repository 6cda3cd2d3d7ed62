package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/cjquines/cfish/internal/client"
	"github.com/cjquines/cfish/internal/protocol"
)

const (
	logPane = iota
	inputPane
)

const sidebarWidth = 28

// Session is the part of a client the model drives
type Session interface {
	Room() string
	View(fn func(*client.Mirror))
	Modify(fn func(*client.Mirror))
	Act(build func(*client.Mirror) (protocol.Event, error)) error
	Rename(name string) error
	RequestReset() error
}

// UpdateMsg reports that the mirror changed
type UpdateMsg struct{}

// DisconnectedMsg reports that the connection ended
type DisconnectedMsg struct{}

// Model is the Bubble Tea model for one player's view of a room
type Model struct {
	session Session
	logger  *log.Logger

	logViewport viewport.Model
	input       textinput.Model

	status      string
	statusError bool
	focusedPane int

	width        int
	height       int
	initialized  bool
	quitting     bool
	disconnected bool
}

// NewModel creates a model over session
func NewModel(session Session, logger *log.Logger) *Model {
	// Sized properly once a WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Type a command, or help"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 100
	ti.PromptStyle = PromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		session:     session,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
		focusedPane: inputPane,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Status returns the last command feedback and whether it was an error
func (m *Model) Status() (string, bool) {
	return m.status, m.statusError
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case UpdateMsg:
		m.refreshLog()

	case DisconnectedMsg:
		m.disconnected = true
		m.setError(errors.New("disconnected from server, Ctrl+C to quit"))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == logPane {
				m.focusedPane = inputPane
				m.input.Focus()
			} else {
				m.focusedPane = logPane
				m.input.Blur()
			}
		case "enter":
			if m.focusedPane == inputPane {
				line := strings.TrimSpace(m.input.Value())
				m.input.SetValue("")
				if cmd := m.Execute(line); cmd != nil {
					return m, cmd
				}
			}
		case "up", "k":
			if m.focusedPane == logPane {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == logPane {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == logPane {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == logPane {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == logPane {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == logPane {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == inputPane {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Execute runs one command line, returning tea.Quit for quit
func (m *Model) Execute(line string) tea.Cmd {
	if line == "" {
		return nil
	}
	cmd, err := ParseCommand(line)
	if err != nil {
		m.setError(err)
		return nil
	}
	m.logger.Debug("Command", "verb", cmd.Verb)

	switch cmd.Verb {
	case VerbHelp:
		m.setStatus(HelpText())
		return nil
	case VerbQuit:
		m.quitting = true
		return tea.Quit
	}

	if m.disconnected {
		m.setError(client.ErrNotConnected)
		return nil
	}

	switch cmd.Verb {
	case VerbName:
		err = m.session.Rename(cmd.Text)
	case VerbReset:
		err = m.session.RequestReset()
	case VerbSort:
		m.session.Modify(func(mirror *client.Mirror) {
			on := !mirror.KeepSorted()
			if cmd.Response != nil {
				on = *cmd.Response
			}
			mirror.SetKeepSorted(on)
		})
	case VerbMove:
		m.session.Modify(func(mirror *client.Mirror) {
			err = mirror.Reorder(cmd.From, cmd.To)
		})
	default:
		err = m.session.Act(cmd.Intent)
	}

	if err != nil {
		m.setError(err)
		return nil
	}
	if cmd.IsGameAction() {
		m.setStatus("sent " + string(cmd.Verb))
	} else {
		m.setStatus("ok")
	}
	return nil
}

func (m *Model) setStatus(s string) {
	m.status, m.statusError = s, false
}

func (m *Model) setError(err error) {
	m.status, m.statusError = err.Error(), true
}

// refreshLog reloads the log, following the bottom unless the user has
// scrolled away
func (m *Model) refreshLog() {
	follow := m.logViewport.AtBottom() || !m.initialized
	var content string
	m.session.View(func(mirror *client.Mirror) {
		content = renderLog(mirror)
	})
	m.logViewport.SetContent(content)
	if follow && m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// View renders the model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var header, sidebar, hand string
	m.session.View(func(mirror *client.Mirror) {
		header = renderStatus(mirror, m.session.Room())
		sidebar = renderSidebar(mirror)
		hand = renderHand(mirror)
	})

	actionContent := m.renderActionPane(hand)
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(paneColor).
		Width(max(m.width-2, 1))
	if m.focusedPane == inputPane {
		actionStyle = actionStyle.BorderForeground(focusColor)
	}
	actionPane := actionStyle.Render(actionContent)

	// Header row, two borders on the top row and two on the action pane
	bodyHeight := max(m.height-actionHeight-5, 1)

	sideWidth := max(sidebarWidth, lipgloss.Width(sidebar))
	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(paneColor).
		Width(sideWidth).
		Height(bodyHeight).
		Render(sidebar)

	logWidth := max(m.width-sideWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = bodyHeight
	if !m.initialized && logWidth > 1 && bodyHeight > 1 {
		m.initialized = true
		m.refreshLog()
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(paneColor).
		Width(logWidth).
		Height(bodyHeight)
	if m.focusedPane == logPane {
		logStyle = logStyle.BorderForeground(focusColor)
	}
	logBox := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logBox, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Left, header, topRow, actionPane)
}

func (m *Model) renderActionPane(hand string) string {
	var content strings.Builder
	if hand != "" {
		content.WriteString(hand)
		content.WriteString("\n")
	}
	content.WriteString(m.input.View())
	content.WriteString("\n")

	if m.status != "" {
		if m.statusError {
			content.WriteString(ErrorStyle.Render(m.status))
		} else {
			content.WriteString(WarningStyle.Render(m.status))
		}
		content.WriteString("\n")
	}

	if m.focusedPane == logPane {
		content.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render("Tab to scroll log • help for commands • Ctrl+C to quit"))
	}
	return content.String()
}
