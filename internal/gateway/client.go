package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/damage-control/apps/go-client/internal/game"
)

const maxBodyBytes = 1 << 20

// Client talks JSON over HTTP to the backend's /api/start and /api/turn.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client whose calls are bounded by timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient lets tests and callers supply their own transport.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Start asks the backend for the opening GameState of a new match.
func (c *Client) Start(ctx context.Context, archetype game.Archetype) (game.GameState, error) {
	raw, err := c.post(ctx, "/api/start", startRequest{Archetype: archetype})
	if err != nil {
		return game.GameState{}, &StartFailure{Err: err}
	}
	st, err := decodeState(raw, archetype)
	if err != nil {
		return game.GameState{}, &StartFailure{Err: err}
	}
	return st, nil
}

// Turn sends one round's action and statement with the current state.
func (c *Client) Turn(ctx context.Context, req TurnRequest) (game.GameState, error) {
	raw, err := c.post(ctx, "/api/turn", req)
	if err != nil {
		return game.GameState{}, &TurnFailure{Err: err}
	}
	st, err := decodeState(raw, req.CurrentState.Archetype)
	if err != nil {
		return game.GameState{}, &TurnFailure{Err: err}
	}
	return st, nil
}

// post encodes body, sends it, and returns the raw 2xx response body.
func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("backend unreachable")
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(raw), 200)}
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
