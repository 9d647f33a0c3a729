package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/robalobadob/damage-control/apps/go-client/internal/game"
)

func TestDateKey_UTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	ts := time.Date(2026, 3, 2, 5, 0, 0, 0, loc)
	assert.Equal(t, "2026-03-01", DateKey(ts))
}

func TestIndex_DeterministicAndInRange(t *testing.T) {
	day := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	first := Index(day, "salt", 4)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Index(day.Add(time.Duration(i)*time.Hour), "salt", 4))
	}
	for d := 0; d < 60; d++ {
		idx := Index(day.AddDate(0, 0, d), "salt", 4)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 4)
	}
	assert.Zero(t, Index(day, "salt", 0))
}

func TestFeatured(t *testing.T) {
	choices := []game.Archetype{game.TechUnicorn, game.PharmaCorp, game.FinTechBro, game.LegacyTitan}
	day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	got := Featured(day, "salt", choices)
	assert.Contains(t, choices, got)
	assert.Equal(t, got, Featured(day, "salt", choices))
	assert.Empty(t, Featured(day, "salt", nil))
}
