package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BioHazard786/coderoom/internal/config"
	"github.com/BioHazard786/coderoom/internal/document"
	"github.com/BioHazard786/coderoom/internal/protocol"
	"github.com/BioHazard786/coderoom/internal/roster"
	"github.com/BioHazard786/coderoom/internal/session"
)

const (
	sidebarWidth    = 24
	statusTTL       = 4 * time.Second
	helpLine        = "ctrl+y copy room id · ctrl+t theme · ctrl+q leave"
	minEditorHeight = 3
)

// Messages fed into the editor model from outside the bubbletea loop.
type (
	sessionEventMsg  struct{ ev session.Event }
	sessionClosedMsg struct{}
	remoteSyncMsg    struct{ code string }
	statusExpiredMsg struct{ seq int }
	clipboardDoneMsg struct{ err error }
)

// EditorModel is the presentation shell for one room session: a shared
// text surface, the live roster sidebar, and a status line for session
// events. All session state it shows is owned by the controller, the
// roster store and the relay; the model only renders and forwards.
type EditorModel struct {
	ctrl   *session.Controller
	relay  *document.Relay
	roster *roster.Store
	cfg    *config.Config

	textarea  textarea.Model
	themeIdx  int
	width     int
	height    int
	status    string
	statusSeq int
	fatal     error
}

// NewEditorModel wires the shell around an already-started session.
func NewEditorModel(ctrl *session.Controller, relay *document.Relay, ros *roster.Store, cfg *config.Config) EditorModel {
	ta := textarea.New()
	ta.Placeholder = "Start typing — everyone in the room sees it live."
	ta.CharLimit = 0
	ta.ShowLineNumbers = true
	ta.Focus()

	// A catch-up sync can land before the shell takes over; the surface
	// starts from whatever the relay already holds, so the first local
	// keystroke extends the shared document instead of replacing it.
	if code, ok := relay.Snapshot(); ok {
		ta.SetValue(code)
	}

	return EditorModel{
		ctrl:     ctrl,
		relay:    relay,
		roster:   ros,
		cfg:      cfg,
		textarea: ta,
	}
}

func (m EditorModel) theme() Theme {
	return Themes[m.themeIdx]
}

func (m EditorModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+q", "ctrl+c":
			m.ctrl.Leave()
			return m, tea.Quit

		case "ctrl+y":
			roomID := m.ctrl.RoomID()
			return m, func() tea.Msg {
				return clipboardDoneMsg{err: CopyToClipboard(roomID)}
			}

		case "ctrl+t":
			m.themeIdx = (m.themeIdx + 1) % len(Themes)
			return m.setStatus("theme: " + m.theme().Name)
		}

		before := m.textarea.Value()
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		if after := m.textarea.Value(); after != before {
			m.relay.OnLocalEdit(after)
		}
		return m, cmd

	case remoteSyncMsg:
		// Externally pushed full-text replacement; not a local edit,
		// the relay already holds it.
		m.textarea.SetValue(msg.code)
		return m, nil

	case sessionEventMsg:
		return m.applyEvent(msg.ev)

	case sessionClosedMsg:
		return m, tea.Quit

	case clipboardDoneMsg:
		if msg.err != nil {
			return m.setStatus("clipboard unavailable")
		}
		return m.setStatus("room id copied")

	case statusExpiredMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m EditorModel) applyEvent(ev session.Event) (tea.Model, tea.Cmd) {
	switch ev.Kind {
	case session.EventPeerJoined:
		return m.setStatus(fmt.Sprintf("%s joined the room", ev.Peer.DisplayName))

	case session.EventPeerLeft:
		verb := "left the room"
		if ev.Reason == protocol.ReasonDisconnected {
			verb = "disconnected"
		}
		return m.setStatus(fmt.Sprintf("%s %s", ev.Peer.DisplayName, verb))

	case session.EventFault:
		m.fatal = ev.Err
		return m, tea.Quit
	}

	return m, nil
}

func (m *EditorModel) setStatus(text string) (tea.Model, tea.Cmd) {
	m.status = text
	m.statusSeq++
	seq := m.statusSeq
	return *m, tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}

func (m *EditorModel) resize() {
	editorWidth := m.width - sidebarWidth - 4
	if editorWidth < 20 {
		editorWidth = 20
	}
	editorHeight := m.height - 4
	if editorHeight < minEditorHeight {
		editorHeight = minEditorHeight
	}
	m.textarea.SetWidth(editorWidth)
	m.textarea.SetHeight(editorHeight)
}

func (m EditorModel) View() string {
	theme := m.theme()

	header := theme.Header().Width(max(m.width, 0)).Render(fmt.Sprintf(
		"%s %s   %s %s   [%s]",
		IconRoom, Truncate(m.ctrl.RoomID(), 36),
		IconPeer, m.ctrl.Username(),
		m.ctrl.State(),
	))

	editor := theme.EditorFrame().Render(m.textarea.View())

	sidebar := theme.SidebarFrame().
		Width(sidebarWidth).
		Render(RosterPanel(theme, m.roster.All(), m.ctrl.LocalID()))

	body := lipgloss.JoinHorizontal(lipgloss.Top, editor, " ", sidebar)

	statusLine := helpLine
	if m.status != "" {
		statusLine = m.status + "   ·   " + helpLine
	}
	footer := theme.StatusBar().Render(statusLine)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// RunEditor runs the presentation shell until the session ends. The
// returned error is the session's terminal fault, if any; a voluntary
// leave returns nil.
func RunEditor(ctrl *session.Controller, relay *document.Relay, ros *roster.Store, cfg *config.Config) error {
	model := NewEditorModel(ctrl, relay, ros, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen())

	// Remote syncs replace the text surface through the relay's
	// editing-surface callback.
	relay.SetOnReplace(func(code string) {
		program.Send(remoteSyncMsg{code: code})
	})

	// A sync landing between the model seed and the callback
	// registration is replayed here; Send queues safely before Run,
	// and a duplicate replacement with the same text is harmless.
	if code, ok := relay.Snapshot(); ok {
		program.Send(remoteSyncMsg{code: code})
	}

	// Forward session events into the bubbletea loop; the channel
	// closing means the session terminated.
	go func() {
		for ev := range ctrl.Events() {
			program.Send(sessionEventMsg{ev: ev})
		}
		program.Send(sessionClosedMsg{})
	}()

	final, err := program.Run()
	ctrl.Leave()
	if err != nil {
		return err
	}

	if m, ok := final.(EditorModel); ok && m.fatal != nil {
		return m.fatal
	}
	return nil
}
