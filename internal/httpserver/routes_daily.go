// internal/httpserver/routes_daily.go
//
// HTTP route for the daily board.
//   - GET /daily → today's featured archetype and the ledger leaderboard
//                  (or those of ?date=YYYY-MM-DD).
//
// The featured archetype is chosen deterministically from date + salt, so
// every client sees the same pick for the same day.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/damage-control/apps/go-client/internal/daily"
	"github.com/robalobadob/damage-control/apps/go-client/internal/game"
	"github.com/robalobadob/damage-control/apps/go-client/internal/ledger"
)

// dailyRes is returned by /daily.
type dailyRes struct {
	Date     string         `json:"date"`
	Featured game.Archetype `json:"featured"`
	Top      []ledger.Match `json:"top"`
}

// mountDaily registers the /daily route.
func (s *Server) mountDaily(r chi.Router) {
	r.Get("/daily", s.handleDaily)
}

// handleDaily answers for the given date (default today).
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	day := s.now()
	if q := r.URL.Query().Get("date"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_date")
			return
		}
		day = parsed
	}
	date := daily.DateKey(day)

	ids := make([]game.Archetype, 0, len(s.opts.Catalog.Archetypes))
	for _, a := range s.opts.Catalog.Archetypes {
		ids = append(ids, a.ID)
	}

	res := dailyRes{
		Date:     date,
		Featured: daily.Featured(day, s.opts.DailySalt, ids),
		Top:      []ledger.Match{},
	}
	if s.results != nil {
		rows, err := s.results.Leaderboard(r.Context(), date, 20)
		if err != nil {
			log.Error().Err(err).Str("date", date).Msg("daily leaderboard")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		res.Top = append(res.Top, rows...)
	}
	_ = json.NewEncoder(w).Encode(res)
}
