package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/damage-control/apps/go-client/internal/game"
	"github.com/robalobadob/damage-control/apps/go-client/internal/session"
)

func openTemp(t *testing.T) (*Ledger, string) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "nested", "ledger.db")
	l, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l, dsn
}

func result(id string, price, rep float64, outcome game.Outcome, at time.Time) session.Result {
	return session.Result{
		SessionID: id,
		Archetype: game.PharmaCorp,
		Rounds:    12,
		Final: game.GameState{
			Archetype:     game.PharmaCorp,
			SharePrice:    price,
			Reputation:    rep,
			TotalShares:   1000,
			AnalystRating: "Buy",
			Headline:      "YEAR END",
		},
		Outcome:    outcome,
		FinishedAt: at,
	}
}

func TestRecordAndRecent(t *testing.T) {
	l, _ := openTemp(t)
	ctx := context.Background()
	day := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	require.NoError(t, l.Record(ctx, result("s1", 150, 55, game.OutcomeWon, day)))
	require.NoError(t, l.Record(ctx, result("s2", 9, 60, game.OutcomeLost, day.Add(time.Hour))))

	got, err := l.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "s2", got[0].SessionID)
	assert.Equal(t, game.OutcomeLost, got[0].Outcome)
	assert.Equal(t, "s1", got[1].SessionID)
	assert.Equal(t, 150000.0, got[1].MarketCap)
	assert.Equal(t, "2026-10-16", got[1].Date)
	assert.Equal(t, 12, got[1].Rounds)
	assert.Equal(t, "Buy", got[1].AnalystRating)
	assert.True(t, day.Equal(got[1].FinishedAt))
	assert.NotEmpty(t, got[1].ID)
}

func TestLeaderboard_WinsFirstThenValuation(t *testing.T) {
	l, _ := openTemp(t)
	ctx := context.Background()
	day := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	require.NoError(t, l.Record(ctx, result("rich-loser", 900, 10, game.OutcomeLost, day)))
	require.NoError(t, l.Record(ctx, result("small-win", 100, 50, game.OutcomeWon, day)))
	require.NoError(t, l.Record(ctx, result("big-win", 200, 70, game.OutcomeWon, day)))
	require.NoError(t, l.Record(ctx, result("yesterday", 999, 99, game.OutcomeWon, day.AddDate(0, 0, -1))))

	top, err := l.Leaderboard(ctx, "2026-10-16", 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "big-win", top[0].SessionID)
	assert.Equal(t, "small-win", top[1].SessionID)
	assert.Equal(t, "rich-loser", top[2].SessionID)

	none, err := l.Leaderboard(ctx, "2000-01-01", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	l, dsn := openTemp(t)
	require.NoError(t, l.Record(context.Background(), result("s1", 150, 55, game.OutcomeWon, time.Now())))
	require.NoError(t, l.Close())

	again, err := Open(dsn)
	require.NoError(t, err)
	defer again.Close()

	got, err := again.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRecord_RejectsUnfinishedOutcome(t *testing.T) {
	l, _ := openTemp(t)
	err := l.Record(context.Background(), result("s1", 150, 55, game.OutcomeNone, time.Now()))
	assert.Error(t, err)
}
