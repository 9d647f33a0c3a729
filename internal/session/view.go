package session

import "github.com/robalobadob/damage-control/apps/go-client/internal/game"

// View is a consistent, copy-on-read picture of a session for renderers.
type View struct {
	ID        string          `json:"id"`
	Phase     Phase           `json:"phase"`
	Round     int             `json:"round"`
	Archetype game.Archetype  `json:"archetype,omitempty"`
	State     *game.GameState `json:"state,omitempty"`
	MarketCap float64         `json:"market_cap"`
	Prev      game.Stats      `json:"prev"`
	Board     *game.Board     `json:"deltas,omitempty"`
	Verdict   game.Verdict    `json:"verdict"`
	Busy      bool            `json:"busy"`
	Notice    string          `json:"notice,omitempty"`
}

// View snapshots the session. State and Board are nil in PhaseNew.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{
		ID:        s.id,
		Phase:     s.phase,
		Round:     s.round,
		Archetype: s.archetype,
		Prev:      s.prev,
		Verdict:   s.verdict,
		Busy:      s.busy.Load(),
		Notice:    s.notice,
	}
	if s.phase == PhaseNew {
		return v
	}

	st := s.state
	st.StakeholderFeed = append([]game.StakeholderPost(nil), s.state.StakeholderFeed...)
	board := game.Deltas(st, s.prev)
	v.State = &st
	v.MarketCap = st.MarketCap()
	v.Board = &board
	return v
}
