// internal/tui/model.go
//
// Terminal front-end for a single match.
// Responsibilities:
//   - Map the session phase onto a screen: archetype picker (NEW), dashboard
//     (IN_PROGRESS), verdict (ENDED).
//   - Own the statement input buffer; clear it only after a successful turn.
//   - Run Start/SubmitTurn as tea.Cmds so the UI keeps rendering while the
//     backend thinks. Keys that would issue a second call are dropped.

package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/damage-control/apps/go-client/internal/catalog"
	"github.com/robalobadob/damage-control/apps/go-client/internal/game"
	"github.com/robalobadob/damage-control/apps/go-client/internal/session"
)

type focusArea int

const (
	focusActions focusArea = iota
	focusStatement
)

// startedMsg and turnedMsg carry the outcome of a backend call.
type startedMsg struct{ err error }
type turnedMsg struct{ err error }

type model struct {
	ctx  context.Context
	sess *session.Session
	cat  *catalog.Catalog

	pick   int // archetype cursor on the picker
	action int // action cursor on the dashboard
	focus  focusArea
	input  textarea.Model

	pending   bool
	narrative string // rendered markdown of the current state
	renderer  *glamour.TermRenderer
	width     int
}

func newModel(ctx context.Context, sess *session.Session) model {
	ta := textarea.New()
	ta.Placeholder = "Draft your public statement (optional)..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 600
	ta.SetHeight(3)
	ta.SetWidth(72)

	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(76))
	if err != nil {
		log.Warn().Err(err).Msg("markdown renderer unavailable")
	}

	return model{
		ctx:      ctx,
		sess:     sess,
		cat:      sess.Catalog(),
		input:    ta,
		renderer: r,
		width:    80,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 8; w > 20 {
			m.input.SetWidth(w)
		}
		return m, nil

	case startedMsg:
		m.pending = false
		if msg.err == nil {
			m.action = 0
			m.focus = focusActions
			m.input.Blur()
			m.refreshNarrative()
		}
		return m, nil

	case turnedMsg:
		m.pending = false
		if msg.err == nil {
			m.input.Reset()
			m.refreshNarrative()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.sess.Phase() {
		case session.PhaseNew:
			return m.updatePicker(msg)
		case session.PhaseInProgress:
			return m.updateDashboard(msg)
		case session.PhaseEnded:
			return m.updateVerdict(msg)
		}
	}
	return m, nil
}

func (m model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.pick > 0 {
			m.pick--
		}
	case "down", "j":
		if m.pick < len(m.cat.Archetypes)-1 {
			m.pick++
		}
	case "enter":
		if m.pending {
			return m, nil
		}
		m.pending = true
		return m, m.startCmd(m.cat.Archetypes[m.pick].ID)
	}
	return m, nil
}

func (m model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		if m.focus == focusStatement {
			m.focus = focusActions
			m.input.Blur()
		} else {
			m.focus = focusStatement
			return m, m.input.Focus()
		}
		return m, nil
	case "ctrl+s":
		return m.submit()
	}

	if m.focus == focusStatement {
		if msg.String() == "esc" {
			m.focus = focusActions
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch k := msg.String(); k {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.action > 0 {
			m.action--
		}
	case "down", "j":
		if m.action < len(m.cat.Actions)-1 {
			m.action++
		}
	case "enter":
		return m.submit()
	default:
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			if idx := int(k[0] - '1'); idx < len(m.cat.Actions) {
				m.action = idx
			}
		}
	}
	return m, nil
}

func (m model) updateVerdict(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter", "r":
		if m.pending {
			return m, nil
		}
		if err := m.sess.Reset(); err != nil {
			log.Warn().Err(err).Msg("reset")
			return m, nil
		}
		m.pick = 0
		m.action = 0
		m.narrative = ""
		m.input.Reset()
	}
	return m, nil
}

// submit sends the selected action with the current statement.
func (m model) submit() (tea.Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}
	m.pending = true
	return m, m.turnCmd(m.cat.Actions[m.action].ID, m.input.Value())
}

func (m model) startCmd(a game.Archetype) tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return startedMsg{err: sess.Start(ctx, a)}
	}
}

func (m model) turnCmd(id game.ActionID, statement string) tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return turnedMsg{err: sess.SubmitTurn(ctx, id, statement)}
	}
}

func (m *model) refreshNarrative() {
	v := m.sess.View()
	if v.State == nil || v.State.Narrative == "" {
		m.narrative = ""
		return
	}
	m.narrative = v.State.Narrative
	if m.renderer == nil {
		return
	}
	out, err := m.renderer.Render(v.State.Narrative)
	if err != nil {
		log.Debug().Err(err).Msg("render narrative")
		return
	}
	m.narrative = out
}

// Run starts the terminal UI and blocks until the player quits or ctx is done.
func Run(ctx context.Context, sess *session.Session) error {
	p := tea.NewProgram(newModel(ctx, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
