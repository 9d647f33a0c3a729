package game

import (
	"fmt"
	"math"
)

// DeltaMode selects formatting and colour polarity for a metric delta.
type DeltaMode int

const (
	// Absolute renders two decimals.
	Absolute DeltaMode = iota
	// Percent renders whole numbers with a % suffix.
	Percent
	// Inverted renders like Absolute but a decrease is favorable (share buybacks).
	Inverted
)

// Tone is the colour polarity of a delta.
type Tone string

const (
	ToneNeutral     Tone = "neutral"
	ToneFavorable   Tone = "favorable"
	ToneUnfavorable Tone = "unfavorable"
)

// NoChange is the marker shown when a metric moved less than deltaEpsilon.
const NoChange = "-"

const deltaEpsilon = 0.01

// DeltaView is a rendered metric delta.
type DeltaView struct {
	Diff float64 `json:"diff"`
	Text string  `json:"text"`
	Tone Tone    `json:"tone"`
}

// Delta compares two snapshots of one metric.
func Delta(current, previous float64, mode DeltaMode) DeltaView {
	diff := current - previous
	if math.Abs(diff) < deltaEpsilon || math.IsNaN(diff) {
		return DeltaView{Diff: 0, Text: NoChange, Tone: ToneNeutral}
	}

	up := diff > 0
	if mode == Inverted {
		up = !up
	}
	tone := ToneUnfavorable
	if up {
		tone = ToneFavorable
	}

	sign := ""
	if diff > 0 {
		sign = "+"
	}
	var text string
	if mode == Percent {
		text = fmt.Sprintf("%s%.0f%%", sign, diff)
	} else {
		text = fmt.Sprintf("%s%.2f", sign, diff)
	}
	return DeltaView{Diff: diff, Text: text, Tone: tone}
}

// Board holds the four deltas shown on the dashboard.
type Board struct {
	SharePrice  DeltaView `json:"share_price"`
	TotalShares DeltaView `json:"total_shares"`
	MarketCap   DeltaView `json:"market_cap"`
	Reputation  DeltaView `json:"reputation"`
}

// Deltas renders the dashboard deltas of current against the pre-turn snapshot.
func Deltas(current GameState, prev Stats) Board {
	return Board{
		SharePrice:  Delta(current.SharePrice, prev.SharePrice, Absolute),
		TotalShares: Delta(current.TotalShares, prev.TotalShares, Inverted),
		MarketCap:   Delta(current.MarketCap(), prev.MarketCap(), Absolute),
		Reputation:  Delta(current.Reputation, prev.Reputation, Percent),
	}
}
