// internal/gateway/gateway.go
//
// Contract with the remote narrative/scoring service.
// Defines:
//   - Gateway: start a match, play a turn. Request/response, no streaming.
//   - TurnRequest / CurrentState: the outgoing turn payload.
//   - StartFailure / TurnFailure: the only two recoverable error kinds.
//
// A failed call never yields a partial GameState.

package gateway

import (
	"context"
	"fmt"

	"github.com/robalobadob/damage-control/apps/go-client/internal/game"
)

// Gateway is implemented by the HTTP Client and by test fakes.
type Gateway interface {
	Start(ctx context.Context, archetype game.Archetype) (game.GameState, error)
	Turn(ctx context.Context, req TurnRequest) (game.GameState, error)
}

// CurrentState is the full GameState with the local round counter merged in.
type CurrentState struct {
	game.GameState
	Round int `json:"round"`
}

// TurnRequest is the body of POST /api/turn. Statement is always encoded,
// so an explicit "" (silence) is distinguishable from a missing field.
type TurnRequest struct {
	Statement    string        `json:"statement"`
	ActionID     game.ActionID `json:"action_id"`
	CurrentState CurrentState  `json:"current_state"`
}

type startRequest struct {
	Archetype game.Archetype `json:"archetype"`
}

// StartFailure wraps any transport, status or payload error from Start.
type StartFailure struct{ Err error }

func (e *StartFailure) Error() string { return "start failed: " + e.Err.Error() }
func (e *StartFailure) Unwrap() error { return e.Err }

// TurnFailure wraps any transport, status or payload error from Turn.
type TurnFailure struct{ Err error }

func (e *TurnFailure) Error() string { return "turn failed: " + e.Err.Error() }
func (e *TurnFailure) Unwrap() error { return e.Err }

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Code, e.Body)
}

// ServerError is an error field embedded in an otherwise successful payload.
type ServerError struct{ Message string }

func (e *ServerError) Error() string { return "backend error: " + e.Message }
