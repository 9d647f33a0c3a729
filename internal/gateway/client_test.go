package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/damage-control/apps/go-client/internal/game"
)

// backend serves fixed responses and records the last request body per path.
type backend struct {
	status int
	body   string
	got    map[string][]byte
}

func newBackend(t *testing.T, status int, body string) (*backend, *Client) {
	t.Helper()
	b := &backend{status: status, body: body, got: map[string][]byte{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		b.got[r.URL.Path] = raw
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(b.status)
		_, _ = w.Write([]byte(b.body))
	}))
	t.Cleanup(srv.Close)
	return b, New(srv.URL+"/", 2*time.Second)
}

const startBody = `{
	"archetype": "Tech Unicorn",
	"share_price": 100,
	"reputation": 50,
	"total_shares": 1000,
	"analyst_rating": "Hold",
	"headline": "DATA LEAK ROCKS UNICORN",
	"narrative": "Day 1.",
	"market_rumor": "Regulators circling.",
	"stakeholder_feed": [
		{"role": "Public", "name": "@angry", "text": "Unacceptable."},
		{"role": "Investor", "name": "Fund", "text": "Watching."}
	]
}`

func TestStart_DecodesCanonicalState(t *testing.T) {
	b, c := newBackend(t, http.StatusOK, startBody)

	st, err := c.Start(context.Background(), game.TechUnicorn)
	require.NoError(t, err)

	assert.JSONEq(t, `{"archetype":"Tech Unicorn"}`, string(b.got["/api/start"]))
	assert.Equal(t, game.TechUnicorn, st.Archetype)
	assert.Equal(t, 100.0, st.SharePrice)
	assert.Equal(t, 50.0, st.Reputation)
	assert.Equal(t, 1000.0, st.TotalShares)
	assert.Equal(t, "Hold", st.AnalystRating)
	assert.Equal(t, "Regulators circling.", st.MarketRumor)
	require.Len(t, st.StakeholderFeed, 2)
	assert.Equal(t, game.StakeholderPost{Role: "Public", Name: "@angry", Text: "Unacceptable."}, st.StakeholderFeed[0])
}

func TestStart_LegacyPayloadIsMapped(t *testing.T) {
	_, c := newBackend(t, http.StatusOK, `{
		"narrative": "Recall announced.",
		"stock_val": "85.5",
		"rep_val": 41,
		"headline": "PILLS PULLED",
		"comments": [{"role": "Employees", "text": "Morale low.", "sentiment": -3}],
		"next_crisis": "Whistleblower emerges."
	}`)

	st, err := c.Start(context.Background(), game.PharmaCorp)
	require.NoError(t, err)

	assert.Equal(t, game.PharmaCorp, st.Archetype)
	assert.Equal(t, 85.5, st.SharePrice)
	assert.Equal(t, 41.0, st.Reputation)
	assert.Equal(t, float64(game.DefaultTotalShares), st.TotalShares)
	assert.Equal(t, "Whistleblower emerges.", st.MarketRumor)
	require.Len(t, st.StakeholderFeed, 1)
	assert.Equal(t, "Employees", st.StakeholderFeed[0].Role)
}

func TestStart_CanonicalKeyWinsOverLegacy(t *testing.T) {
	_, c := newBackend(t, http.StatusOK, `{"share_price": 12, "stock_val": 99, "reputation": 50}`)

	st, err := c.Start(context.Background(), game.FinTechBro)
	require.NoError(t, err)
	assert.Equal(t, 12.0, st.SharePrice)
}

func TestStart_Failures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error status", http.StatusInternalServerError, `{"error":"quota"}`},
		{"error field in 200", http.StatusOK, `{"error":"model overloaded"}`},
		{"not json", http.StatusOK, `<html>`},
		{"array", http.StatusOK, `[1,2]`},
		{"missing metrics", http.StatusOK, `{"headline":"x"}`},
		{"non-numeric price", http.StatusOK, `{"share_price":"n/a","reputation":60}`},
		{"object price", http.StatusOK, `{"share_price":{"v":120},"reputation":60}`},
		{"boolean price", http.StatusOK, `{"share_price":true,"reputation":60}`},
		{"word reputation", http.StatusOK, `{"share_price":100,"reputation":"high"}`},
		{"array shares", http.StatusOK, `{"share_price":100,"reputation":60,"total_shares":[1000]}`},
		{"feed not a list", http.StatusOK, `{"share_price":100,"reputation":60,"stakeholder_feed":"angry"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, c := newBackend(t, tc.status, tc.body)
			st, err := c.Start(context.Background(), game.TechUnicorn)
			require.Error(t, err)

			var sf *StartFailure
			assert.True(t, errors.As(err, &sf))
			assert.Equal(t, game.GameState{}, st)
		})
	}
}

func TestStart_StatusErrorIsInspectable(t *testing.T) {
	_, c := newBackend(t, http.StatusBadGateway, `upstream down`)
	_, err := c.Start(context.Background(), game.TechUnicorn)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Equal(t, "upstream down", se.Body)
}

func TestTurn_SendsFullStateWithRoundAndExplicitStatement(t *testing.T) {
	b, c := newBackend(t, http.StatusOK, `{"share_price": 95, "reputation": 48, "total_shares": 1000}`)

	cur := game.GameState{
		Archetype:       game.TechUnicorn,
		SharePrice:      100,
		Reputation:      50,
		TotalShares:     1000,
		Headline:        "H",
		StakeholderFeed: []game.StakeholderPost{{Role: "Public", Text: "t"}},
	}
	st, err := c.Turn(context.Background(), TurnRequest{
		Statement:    "",
		ActionID:     "Monitor Situation",
		CurrentState: CurrentState{GameState: cur, Round: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, game.TechUnicorn, st.Archetype, "archetype falls back to the request's")
	assert.Equal(t, 95.0, st.SharePrice)

	var sent map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b.got["/api/turn"], &sent))
	assert.JSONEq(t, `""`, string(sent["statement"]))
	assert.JSONEq(t, `"Monitor Situation"`, string(sent["action_id"]))

	var cs map[string]any
	require.NoError(t, json.Unmarshal(sent["current_state"], &cs))
	assert.Equal(t, 3.0, cs["round"])
	assert.Equal(t, 100.0, cs["share_price"])
	assert.Equal(t, "H", cs["headline"])
	assert.Equal(t, "Tech Unicorn", cs["archetype"])
	assert.NotContains(t, cs, "market_cap")
}

func TestTurn_FailureIsTurnFailure(t *testing.T) {
	_, c := newBackend(t, http.StatusInternalServerError, `{"error":"boom"}`)
	_, err := c.Turn(context.Background(), TurnRequest{ActionID: "Public Apology"})

	var tf *TurnFailure
	require.True(t, errors.As(err, &tf))
	var sf *StartFailure
	assert.False(t, errors.As(err, &sf))
}

func TestTurn_MalformedMetricsAreTurnFailure(t *testing.T) {
	for _, body := range []string{
		`{"share_price":"n/a","reputation":60,"total_shares":1000}`,
		`{"share_price":{"v":120},"reputation":60}`,
		`{"share_price":true,"reputation":"high"}`,
	} {
		_, c := newBackend(t, http.StatusOK, body)
		st, err := c.Turn(context.Background(), TurnRequest{ActionID: "Public Apology"})

		var tf *TurnFailure
		require.True(t, errors.As(err, &tf), body)
		assert.Equal(t, game.GameState{}, st)
	}
}

func TestTurn_NumericStringsAndNullFeedAccepted(t *testing.T) {
	_, c := newBackend(t, http.StatusOK, `{"share_price":" 101.5 ","reputation":"55","total_shares":"900","stakeholder_feed":null}`)
	st, err := c.Turn(context.Background(), TurnRequest{ActionID: "Public Apology"})
	require.NoError(t, err)
	assert.Equal(t, 101.5, st.SharePrice)
	assert.Equal(t, 55.0, st.Reputation)
	assert.Equal(t, 900.0, st.TotalShares)
	assert.Empty(t, st.StakeholderFeed)
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "ab…", truncate("abcdef", 2))

	got := truncate("aé€", 4) // byte 4 falls inside the euro sign
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "aé…", got)
}

func TestTurn_TimeoutIsTurnFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, 50*time.Millisecond)
	_, err := c.Turn(context.Background(), TurnRequest{ActionID: "Deny Responsibility"})

	var tf *TurnFailure
	assert.True(t, errors.As(err, &tf))
}

func TestTurn_ContextCancelIsTurnFailure(t *testing.T) {
	_, c := newBackend(t, http.StatusOK, `{"share_price": 1, "reputation": 1}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Turn(ctx, TurnRequest{ActionID: "Deny Responsibility"})
	var tf *TurnFailure
	require.True(t, errors.As(err, &tf))
	assert.ErrorIs(t, err, context.Canceled)
}
