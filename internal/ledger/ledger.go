// internal/ledger/ledger.go
//
// Ledger of finished matches.
// Responsibilities:
//   - Record one row per match that reached a verdict (session.Recorder).
//   - List recent matches and a per-day leaderboard.
//
// Only results are stored. Live session state is never persisted and a
// session cannot be restored from the ledger.

package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/damage-control/apps/go-client/internal/daily"
	"github.com/robalobadob/damage-control/apps/go-client/internal/game"
	"github.com/robalobadob/damage-control/apps/go-client/internal/session"
)

// Match is a stored match result.
type Match struct {
	ID            string         `json:"id"`
	SessionID     string         `json:"sessionId"`
	Archetype     game.Archetype `json:"archetype"`
	Rounds        int            `json:"rounds"`
	SharePrice    float64        `json:"sharePrice"`
	Reputation    float64        `json:"reputation"`
	TotalShares   float64        `json:"totalShares"`
	MarketCap     float64        `json:"marketCap"`
	AnalystRating string         `json:"analystRating,omitempty"`
	Headline      string         `json:"headline,omitempty"`
	Outcome       game.Outcome   `json:"outcome"`
	Date          string         `json:"date"`
	FinishedAt    time.Time      `json:"finishedAt"`
}

// timeLayout is fixed-width so finished_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Ledger stores match results in SQLite.
type Ledger struct {
	db *sql.DB
}

// Open opens the database at dsn and applies migrations.
func Open(dsn string) (*Ledger, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close releases the database handle.
func (l *Ledger) Close() error { return l.db.Close() }

// Record implements session.Recorder.
func (l *Ledger) Record(ctx context.Context, r session.Result) error {
	finished := r.FinishedAt.UTC()
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO matches
			(id, session_id, archetype, rounds, share_price, reputation, total_shares,
			 market_cap, analyst_rating, headline, outcome, date, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), r.SessionID, string(r.Archetype), r.Rounds,
		r.Final.SharePrice, r.Final.Reputation, r.Final.TotalShares, r.Final.MarketCap(),
		r.Final.AnalystRating, r.Final.Headline, string(r.Outcome),
		daily.DateKey(finished), finished.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

const matchColumns = `id, session_id, archetype, rounds, share_price, reputation, total_shares,
	market_cap, analyst_rating, headline, outcome, date, finished_at`

// Recent returns the latest finished matches, newest first.
// Default limit is 20 if not specified.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanMatches(rows, limit)
}

// Leaderboard returns the best matches of a date: wins first, then by
// market cap, then reputation, then earliest finish.
func (l *Ledger) Leaderboard(ctx context.Context, date string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE date=?
		ORDER BY (outcome = 'won') DESC, market_cap DESC, reputation DESC, finished_at ASC
		LIMIT ?`, date, limit)
	if err != nil {
		return nil, err
	}
	return scanMatches(rows, limit)
}

func scanMatches(rows *sql.Rows, capacity int) ([]Match, error) {
	defer rows.Close()
	out := make([]Match, 0, capacity)
	for rows.Next() {
		var (
			m        Match
			finished string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Archetype, &m.Rounds, &m.SharePrice,
			&m.Reputation, &m.TotalShares, &m.MarketCap, &m.AnalystRating, &m.Headline,
			&m.Outcome, &m.Date, &finished); err != nil {
			return nil, err
		}
		m.FinishedAt, _ = time.Parse(timeLayout, finished)
		out = append(out, m)
	}
	return out, rows.Err()
}
