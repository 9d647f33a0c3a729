package gateway

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/robalobadob/damage-control/apps/go-client/internal/game"
)

// legacyKeys maps field names used by older backends onto the canonical
// schema. A legacy key is only used when its canonical key is absent.
var legacyKeys = []struct{ legacy, canonical string }{
	{"stock_val", "share_price"},
	{"rep_val", "reputation"},
	{"comments", "stakeholder_feed"},
	{"next_crisis", "market_rumor"},
}

// canonicalize rewrites legacy keys in a JSON object to their canonical names.
func canonicalize(body []byte) ([]byte, error) {
	var err error
	for _, k := range legacyKeys {
		old := gjson.GetBytes(body, k.legacy)
		if !old.Exists() {
			continue
		}
		if !gjson.GetBytes(body, k.canonical).Exists() {
			body, err = sjson.SetRawBytes(body, k.canonical, []byte(old.Raw))
			if err != nil {
				return nil, fmt.Errorf("map %s: %w", k.legacy, err)
			}
		}
		body, err = sjson.DeleteBytes(body, k.legacy)
		if err != nil {
			return nil, fmt.Errorf("drop %s: %w", k.legacy, err)
		}
	}
	return body, nil
}

// decodeState turns a response body into a normalized GameState.
//
// Metrics may arrive as numbers or numeric strings ("100"); any other type
// fails the decode. total_shares defaults to
// game.DefaultTotalShares; archetype defaults to the one the request carried.
func decodeState(body []byte, archetype game.Archetype) (game.GameState, error) {
	if !gjson.ValidBytes(body) {
		return game.GameState{}, errors.New("response is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return game.GameState{}, errors.New("response is not a JSON object")
	}
	if e := root.Get("error"); e.Exists() && e.Type != gjson.Null && e.String() != "" {
		return game.GameState{}, &ServerError{Message: e.String()}
	}

	body, err := canonicalize(body)
	if err != nil {
		return game.GameState{}, err
	}
	root = gjson.ParseBytes(body)

	for _, required := range []string{"share_price", "reputation"} {
		if v := root.Get(required); !v.Exists() || v.Type == gjson.Null {
			return game.GameState{}, fmt.Errorf("response missing %s", required)
		}
	}

	price, err := metric(root, "share_price")
	if err != nil {
		return game.GameState{}, err
	}
	rep, err := metric(root, "reputation")
	if err != nil {
		return game.GameState{}, err
	}

	st := game.GameState{
		Archetype:     game.Archetype(root.Get("archetype").String()),
		SharePrice:    price,
		Reputation:    rep,
		TotalShares:   game.DefaultTotalShares,
		AnalystRating: root.Get("analyst_rating").String(),
		Headline:      root.Get("headline").String(),
		Narrative:     root.Get("narrative").String(),
		MarketRumor:   root.Get("market_rumor").String(),
	}
	if ts := root.Get("total_shares"); ts.Exists() && ts.Type != gjson.Null {
		if st.TotalShares, err = metric(root, "total_shares"); err != nil {
			return game.GameState{}, err
		}
	}
	if st.Archetype == "" {
		st.Archetype = archetype
	}

	raw := root.Get("stakeholder_feed")
	if raw.Exists() && raw.Type != gjson.Null && !raw.IsArray() {
		return game.GameState{}, errors.New("stakeholder_feed is not an array")
	}
	feed := []game.StakeholderPost{}
	raw.ForEach(func(_, post gjson.Result) bool {
		feed = append(feed, game.StakeholderPost{
			Role: post.Get("role").String(),
			Name: post.Get("name").String(),
			Text: post.Get("text").String(),
		})
		return true
	})
	st.StakeholderFeed = feed

	return st.Normalize(), nil
}

// metric reads a numeric field. Numbers and numeric strings are accepted;
// anything else fails the decode rather than reading as zero.
func metric(root gjson.Result, key string) (float64, error) {
	v := root.Get(key)
	switch v.Type {
	case gjson.Number:
		return v.Num, nil
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, fmt.Errorf("%s is not numeric: %q", key, v.Str)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%s is not numeric: %s", key, v.Raw)
	}
}
