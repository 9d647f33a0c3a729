// internal/game/types.go
//
// Core type definitions for the Damage Control client.
// Defines:
//   - Archetype: company profile chosen once at match start.
//   - ActionID: catalog key of a response action.
//   - GameState: the authoritative snapshot returned by the backend each round.
//   - StakeholderPost: one reaction in the stakeholder feed.
//   - Stats: the pre-turn snapshot used for delta rendering.

package game

import "strings"

// Archetype identifies the company profile. Opaque to scoring; it only
// shapes the narrative produced by the backend.
type Archetype string

const (
	TechUnicorn Archetype = "Tech Unicorn"
	PharmaCorp  Archetype = "Pharma Corp"
	FinTechBro  Archetype = "FinTech Bro"
	LegacyTitan Archetype = "Legacy Titan"
)

// IndustrialTitan is the backend's name for LegacyTitan.
const IndustrialTitan Archetype = "Industrial Titan"

// Canonical maps the backend alias onto the client's archetype name.
func (a Archetype) Canonical() Archetype {
	if a == IndustrialTitan {
		return LegacyTitan
	}
	return a
}

// ActionID is a recognized server-side action key (e.g. "Public Apology").
type ActionID string

// DefaultTotalShares is used when a payload does not model share count.
const DefaultTotalShares = 1000

// StakeholderPost is a single reaction attached to a GameState.
type StakeholderPost struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	Text string `json:"text"`
}

// GameState is replaced wholesale after every successful backend call.
// MarketCap is derived and never serialized.
type GameState struct {
	Archetype       Archetype         `json:"archetype"`
	SharePrice      float64           `json:"share_price"`
	Reputation      float64           `json:"reputation"`
	TotalShares     float64           `json:"total_shares"`
	AnalystRating   string            `json:"analyst_rating"`
	Headline        string            `json:"headline"`
	Narrative       string            `json:"narrative"`
	MarketRumor     string            `json:"market_rumor"`
	StakeholderFeed []StakeholderPost `json:"stakeholder_feed"`
}

// Stats is the shallow pre-turn snapshot (PrevStats).
type Stats struct {
	SharePrice  float64 `json:"share_price"`
	Reputation  float64 `json:"reputation"`
	TotalShares float64 `json:"total_shares"`
}

// Group is the display bucket of a stakeholder role.
type Group string

const (
	GroupPublic   Group = "public"
	GroupInvestor Group = "investor"
	GroupOther    Group = "other"
)

// RoleGroup buckets a free-text role into Public, Investor, or everyone else
// (employees, regulators, ...).
func RoleGroup(role string) Group {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "public":
		return GroupPublic
	case "investor", "investors":
		return GroupInvestor
	default:
		return GroupOther
	}
}
