// internal/session/session.go
//
// Session: the phase machine and turn controller of a single match.
// Responsibilities:
//   - Own GameState, the pre-turn snapshot, the round counter and the phase.
//   - Gate operations by phase: NEW accepts Start, IN_PROGRESS accepts SubmitTurn,
//     ENDED accepts Reset.
//   - Drop (never queue) any Start/SubmitTurn/Reset issued while a call is in flight.
//   - Replace GameState wholesale on success; change nothing visible on failure.
//   - Bound every backend call with a timeout.
//
// Notes:
//   - The end check uses the new GameState and the round value before increment,
//     so the match ends after the turn played at round MaxRounds.
//   - Failures leave a generic, user-facing notice; the wrapped error is returned
//     for logging.

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/damage-control/apps/go-client/internal/catalog"
	"github.com/robalobadob/damage-control/apps/go-client/internal/game"
	"github.com/robalobadob/damage-control/apps/go-client/internal/gateway"
)

var (
	// ErrBusy is returned when a call is already in flight; the new call did nothing.
	ErrBusy = errors.New("session busy")
	// ErrWrongPhase is returned when the operation is not valid in the current phase.
	ErrWrongPhase = errors.New("operation not valid in current phase")

	ErrUnknownArchetype = errors.New("unknown archetype")
	ErrUnknownAction    = errors.New("unknown action")
)

// User-facing notices for the two recoverable failures.
const (
	StartFailedNotice = "System Overload. Please try again in 1 minute."
	TurnFailedNotice  = "Connection lost. Please retry the turn."
)

// DefaultTimeout bounds a backend call when no option overrides it.
const DefaultTimeout = 30 * time.Second

// Result summarizes a finished match.
type Result struct {
	SessionID  string
	Archetype  game.Archetype
	Rounds     int
	Final      game.GameState
	Outcome    game.Outcome
	FinishedAt time.Time
}

// Recorder receives each finished match once.
type Recorder interface {
	Record(ctx context.Context, r Result) error
}

// Option configures a Session.
type Option func(*Session)

// WithCatalog overrides the catalog used to validate archetypes and actions.
func WithCatalog(c *catalog.Catalog) Option { return func(s *Session) { s.cat = c } }

// WithTimeout bounds each backend call. Zero disables the bound.
func WithTimeout(d time.Duration) Option { return func(s *Session) { s.timeout = d } }

// WithRecorder registers a sink for finished matches.
func WithRecorder(r Recorder) Option { return func(s *Session) { s.recorder = r } }

// WithID sets the session identifier (default: random UUID).
func WithID(id string) Option { return func(s *Session) { s.id = id } }

// Session is safe for concurrent use; at most one backend call runs at a time.
type Session struct {
	id       string
	gw       gateway.Gateway
	cat      *catalog.Catalog
	timeout  time.Duration
	recorder Recorder
	now      func() time.Time

	busy atomic.Bool

	mu        sync.RWMutex
	phase     Phase
	archetype game.Archetype
	state     game.GameState
	prev      game.Stats
	round     int
	verdict   game.Verdict
	notice    string
}

// New returns a session in PhaseNew.
func New(gw gateway.Gateway, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		gw:      gw,
		timeout: DefaultTimeout,
		now:     time.Now,
		phase:   PhaseNew,
	}
	for _, o := range opts {
		o(s)
	}
	if s.cat == nil {
		s.cat = catalog.Default()
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Catalog returns the catalog this session validates against.
func (s *Session) Catalog() *catalog.Catalog { return s.cat }

// Start requests the opening state for archetype. Valid only in PhaseNew.
func (s *Session) Start(ctx context.Context, archetype game.Archetype) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	if s.phase != PhaseNew {
		s.mu.Unlock()
		return ErrWrongPhase
	}
	canon, ok := s.cat.ResolveArchetype(archetype)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownArchetype, archetype)
	}
	s.notice = ""
	s.mu.Unlock()

	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	st, err := s.gw.Start(callCtx, canon)
	if err != nil {
		log.Warn().Err(err).Str("session", s.id).Str("archetype", string(canon)).Msg("start failed")
		s.mu.Lock()
		s.notice = StartFailedNotice
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.phase = PhaseInProgress
	s.archetype = canon
	s.state = st
	s.prev = game.Snapshot(st)
	s.round = 1
	s.verdict = game.Verdict{}
	s.mu.Unlock()

	log.Info().Str("session", s.id).Str("archetype", string(canon)).Msg("match started")
	return nil
}

// SubmitTurn plays one round. Valid only in PhaseInProgress.
//
// For the silence action a blank statement is sent as an explicit "".
// On failure GameState, round and phase are unchanged and the call may be retried.
func (s *Session) SubmitTurn(ctx context.Context, actionID game.ActionID, statement string) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	if s.phase != PhaseInProgress {
		s.mu.Unlock()
		return ErrWrongPhase
	}
	if _, ok := s.cat.Action(actionID); !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownAction, actionID)
	}
	if s.cat.IsSilence(actionID) && strings.TrimSpace(statement) == "" {
		statement = ""
	}

	restore := s.prev
	s.prev = game.Snapshot(s.state)
	round := s.round
	req := gateway.TurnRequest{
		Statement:    statement,
		ActionID:     actionID,
		CurrentState: gateway.CurrentState{GameState: s.state, Round: round},
	}
	s.mu.Unlock()

	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	st, err := s.gw.Turn(callCtx, req)
	if err != nil {
		log.Warn().Err(err).Str("session", s.id).Int("round", round).Msg("turn failed")
		s.mu.Lock()
		s.prev = restore
		s.notice = TurnFailedNotice
		s.mu.Unlock()
		return err
	}

	verdict := game.Evaluate(st, round)

	s.mu.Lock()
	st.Archetype = s.archetype // fixed for the whole match
	s.state = st
	s.round = round + 1
	s.notice = ""
	if verdict.Ended && s.phase.CanTransitionTo(PhaseEnded) {
		s.phase = PhaseEnded
		s.verdict = verdict
	}
	result := Result{
		SessionID:  s.id,
		Archetype:  s.archetype,
		Rounds:     round,
		Final:      st,
		Outcome:    verdict.Outcome,
		FinishedAt: s.now(),
	}
	s.mu.Unlock()

	log.Info().
		Str("session", s.id).
		Int("round", round).
		Str("action", string(actionID)).
		Float64("share_price", st.SharePrice).
		Float64("reputation", st.Reputation).
		Msg("turn resolved")

	if verdict.Ended {
		log.Info().Str("session", s.id).Str("outcome", string(verdict.Outcome)).Msg("match ended")
		s.record(ctx, result)
	}
	return nil
}

// Reset returns an ended session to PhaseNew, clearing all match state.
func (s *Session) Reset() error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.phase.CanTransitionTo(PhaseNew) {
		return ErrWrongPhase
	}
	s.phase = PhaseNew
	s.archetype = ""
	s.state = game.GameState{}
	s.prev = game.Stats{}
	s.round = 0
	s.verdict = game.Verdict{}
	s.notice = ""
	return nil
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Busy reports whether a backend call is in flight.
func (s *Session) Busy() bool { return s.busy.Load() }

func (s *Session) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// record hands the result to the recorder; failures are logged, never surfaced.
func (s *Session) record(ctx context.Context, r Result) {
	if s.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.recorder.Record(ctx, r); err != nil {
		log.Warn().Err(err).Str("session", s.id).Msg("record match result")
	}
}
