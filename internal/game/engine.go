// internal/game/engine.go
//
// Pure rules evaluated on the client side of a match.
// Responsibilities:
//   - Derive market cap from share price × share count.
//   - Normalize a freshly decoded GameState at the data-model boundary.
//   - Decide whether a match continues or ends, and who won.
//
// Notes:
//   - Scoring formulas live server-side; this file only reads the result.
//   - Evaluate is deterministic: the same (state, round) always yields the same Verdict.
package game

import "math"

// End-condition thresholds.
const (
	MaxRounds     = 12
	MinSharePrice = 10
	MinMarketCap  = 10000
	MinReputation = 5

	WinMarketCap  = 100000
	WinReputation = 50
)

// Outcome is the verdict of a finished match.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
)

// Verdict is the result of Evaluate.
type Verdict struct {
	Ended   bool    `json:"ended"`
	Outcome Outcome `json:"outcome,omitempty"`
}

// MarketCap returns SharePrice × TotalShares.
func (s GameState) MarketCap() float64 {
	return s.SharePrice * s.TotalShares
}

// Normalize clamps the metrics into their valid ranges:
// share price and share count non-negative, reputation in [0,100].
// A nil feed becomes empty so renderers never branch on nil.
func (s GameState) Normalize() GameState {
	s.SharePrice = nonNegative(s.SharePrice)
	s.TotalShares = nonNegative(s.TotalShares)
	s.Reputation = math.Min(100, nonNegative(s.Reputation))
	if s.StakeholderFeed == nil {
		s.StakeholderFeed = []StakeholderPost{}
	}
	s.Archetype = s.Archetype.Canonical()
	return s
}

// Snapshot captures the metrics compared by the delta board.
func Snapshot(s GameState) Stats {
	return Stats{SharePrice: s.SharePrice, Reputation: s.Reputation, TotalShares: s.TotalShares}
}

// MarketCap of a snapshot.
func (p Stats) MarketCap() float64 { return p.SharePrice * p.TotalShares }

// Evaluate decides whether the match ends after a turn.
//
// Termination triggers (any one ends the match):
//   - share price below MinSharePrice
//   - market cap below MinMarketCap
//   - reputation below MinReputation
//   - round at or beyond MaxRounds
//
// The match is won only if market cap ≥ WinMarketCap and reputation ≥ WinReputation.
func Evaluate(s GameState, round int) Verdict {
	mc := s.MarketCap()
	ended := s.SharePrice < MinSharePrice ||
		mc < MinMarketCap ||
		s.Reputation < MinReputation ||
		round >= MaxRounds
	if !ended {
		return Verdict{}
	}
	return Verdict{Ended: true, Outcome: FinalOutcome(s)}
}

// FinalOutcome applies the win criteria regardless of whether the match has ended.
func FinalOutcome(s GameState) Outcome {
	if s.MarketCap() >= WinMarketCap && s.Reputation >= WinReputation {
		return OutcomeWon
	}
	return OutcomeLost
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
