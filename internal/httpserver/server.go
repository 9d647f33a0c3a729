// internal/httpserver/server.go
//
// HTTP server wiring for the Damage Control client.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/catalog".
//   - Session endpoints: GET /session, POST /session/start|turn|reset.
//   - Results endpoints: /daily (routes_daily.go), /matches/recent.
//
// Notes:
//   - Each browser gets its own Session, found through a signed cookie
//     (session_cookie.go). Sessions live in memory only.
//   - The Go process owns the match; browsers only render the session View
//     and forward the player's choices.
//   - Gateway failures surface as 502 with the generic notice; the session
//     stays in its last good phase so the player can retry.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/damage-control/apps/go-client/internal/catalog"
	"github.com/robalobadob/damage-control/apps/go-client/internal/game"
	"github.com/robalobadob/damage-control/apps/go-client/internal/gateway"
	"github.com/robalobadob/damage-control/apps/go-client/internal/ledger"
	"github.com/robalobadob/damage-control/apps/go-client/internal/session"
	"github.com/robalobadob/damage-control/apps/go-client/internal/store"
)

// Results is the ledger as seen by the server. A nil Results disables
// recording and the results endpoints answer with empty lists.
type Results interface {
	session.Recorder
	Recent(ctx context.Context, limit int) ([]ledger.Match, error)
	Leaderboard(ctx context.Context, date string, limit int) ([]ledger.Match, error)
}

// Options configures a Server.
type Options struct {
	Secret         string        // HMAC key for the session cookie
	Origin         string        // allowed CORS origin
	Secure         bool          // Secure + SameSite=None cookies
	GatewayTimeout time.Duration // per backend call
	CookieTTL      time.Duration
	DailySalt      string
	Catalog        *catalog.Catalog
}

// Server bundles router, session registry, backend gateway and ledger.
type Server struct {
	r       *chi.Mux
	gw      gateway.Gateway
	store   store.Store
	results Results
	opts    Options
	now     func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(gw gateway.Gateway, st store.Store, results Results, opts Options) *Server {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.CookieTTL <= 0 {
		opts.CookieTTL = 7 * 24 * time.Hour
	}
	s := &Server{r: chi.NewRouter(), gw: gw, store: st, results: results, opts: opts, now: time.Now}

	// handler budget: one backend call plus slack
	budget := opts.GatewayTimeout + 5*time.Second
	if opts.GatewayTimeout <= 0 {
		budget = session.DefaultTimeout + 5*time.Second
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(budget))
	s.r.Use(jsonContentType)
	s.r.Use(cors(opts.Origin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"damage-control","endpoints":["/health","/catalog","/session","POST /session/start","POST /session/turn","POST /session/reset","/daily","/matches/recent"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/catalog", s.handleCatalog)

	s.r.Route("/session", func(r chi.Router) {
		r.Use(s.withSession())
		r.Get("/", s.handleView)
		r.Post("/start", s.handleStart)
		r.Post("/turn", s.handleTurn)
		r.Post("/reset", s.handleReset)
	})

	s.mountDaily(s.r)
	s.r.Get("/matches/recent", s.handleRecent)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Router exposes the internal router (used by main and tests).
func (s *Server) Router() chi.Router { return s.r }

// RunSweeper drops sessions idle longer than ttl until ctx is done.
func (s *Server) RunSweeper(ctx context.Context, ttl, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := s.store.Sweep(ctx, s.now().Add(-ttl)); n > 0 {
				log.Info().Int("dropped", n).Msg("swept idle sessions")
			}
		}
	}
}

// ------------------------------ CATALOG ------------------------------------

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(s.opts.Catalog)
}

// ------------------------------ SESSION ------------------------------------

// startReq is the payload for POST /session/start.
type startReq struct {
	Archetype game.Archetype `json:"archetype"`
}

// turnReq is the payload for POST /session/turn.
type turnReq struct {
	ActionID  game.ActionID `json:"actionId"`
	Statement string        `json:"statement"`
}

// handleView returns the caller's session, creating one in NEW if needed.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session_unavailable")
		return
	}
	_ = json.NewEncoder(w).Encode(sess.View())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, err := currentSession(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session_unavailable")
		return
	}
	if err := sess.Start(r.Context(), req.Archetype); err != nil {
		writeSessionError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(sess.View())
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, err := currentSession(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session_unavailable")
		return
	}
	if err := sess.SubmitTurn(r.Context(), req.ActionID, req.Statement); err != nil {
		writeSessionError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(sess.View())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session_unavailable")
		return
	}
	if err := sess.Reset(); err != nil {
		writeSessionError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(sess.View())
}

// newSession builds a session wired to the shared gateway and ledger.
func (s *Server) newSession() *session.Session {
	opts := []session.Option{
		session.WithCatalog(s.opts.Catalog),
		session.WithTimeout(s.opts.GatewayTimeout),
	}
	if s.results != nil {
		opts = append(opts, session.WithRecorder(s.results))
	}
	return session.New(s.gw, opts...)
}

// ------------------------------ RESULTS ------------------------------------

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	out := []ledger.Match{}
	if s.results != nil {
		rows, err := s.results.Recent(r.Context(), limit)
		if err != nil {
			log.Error().Err(err).Msg("recent matches")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		out = append(out, rows...)
	}
	_ = json.NewEncoder(w).Encode(out)
}

// ------------------------------- errors ------------------------------------

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeSessionError maps session and gateway errors onto HTTP statuses.
func writeSessionError(w http.ResponseWriter, err error) {
	var (
		sf *gateway.StartFailure
		tf *gateway.TurnFailure
	)
	switch {
	case errors.Is(err, session.ErrBusy):
		writeError(w, http.StatusConflict, "busy")
	case errors.Is(err, session.ErrWrongPhase):
		writeError(w, http.StatusConflict, "wrong_phase")
	case errors.Is(err, session.ErrUnknownArchetype):
		writeError(w, http.StatusBadRequest, "unknown_archetype")
	case errors.Is(err, session.ErrUnknownAction):
		writeError(w, http.StatusBadRequest, "unknown_action")
	case errors.As(err, &sf):
		writeError(w, http.StatusBadGateway, session.StartFailedNotice)
	case errors.As(err, &tf):
		writeError(w, http.StatusBadGateway, session.TurnFailedNotice)
	default:
		log.Error().Err(err).Msg("session operation")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}
