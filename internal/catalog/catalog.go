// internal/catalog/catalog.go
//
// Archetype and action catalog management.
//
// Responsibilities:
//   - Load the catalog from a CATALOG_FILE path or fall back to the embedded default.
//   - Validate ids (non-empty, unique) and the single optional silence action.
//   - Answer lookups used by the session, the TUI and the HTTP surface.
//
// The catalog is configuration: any id listed here must be a key the backend
// recognizes. Deployments swap the file to match their backend.
//
// Initialization behavior (Init):
//   1. If path is non-empty, read and parse that file.
//   2. Otherwise parse the embedded assets/catalog.json.
//   Init runs once (sync.Once); Default() returns the loaded catalog.

package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/damage-control/apps/go-client/assets"
	"github.com/robalobadob/damage-control/apps/go-client/internal/game"
)

// Archetype describes a selectable company profile.
type Archetype struct {
	ID      game.Archetype   `json:"id"`
	Desc    string           `json:"desc"`
	Icon    string           `json:"icon"`
	Aliases []game.Archetype `json:"aliases,omitempty"`
}

// Action describes a response action offered each round.
type Action struct {
	ID      game.ActionID `json:"id"`
	Label   string        `json:"label"`
	Desc    string        `json:"desc"`
	Silence bool          `json:"silence,omitempty"`
}

// Catalog is an immutable, validated set of archetypes and actions.
type Catalog struct {
	Archetypes []Archetype `json:"archetypes"`
	Actions    []Action    `json:"actions"`

	archetypes map[game.Archetype]game.Archetype // id or alias -> canonical id
	actions    map[game.ActionID]Action
}

var (
	initOnce   sync.Once
	defaultCat *Catalog
	initialErr error
)

// Init loads the process-wide catalog exactly once.
func Init(path string) error {
	initOnce.Do(func() {
		defaultCat, initialErr = Load(path)
	})
	return initialErr
}

// Default returns the process-wide catalog, loading the embedded one if
// Init was never called. It panics if the embedded catalog is invalid.
func Default() *Catalog {
	if err := Init(""); err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return defaultCat
}

// Load reads a catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = assets.DefaultCatalog()
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(c.Archetypes) == 0 {
		return nil, errors.New("catalog has no archetypes")
	}
	if len(c.Actions) == 0 {
		return nil, errors.New("catalog has no actions")
	}

	c.archetypes = make(map[game.Archetype]game.Archetype)
	for _, a := range c.Archetypes {
		if strings.TrimSpace(string(a.ID)) == "" {
			return nil, errors.New("archetype with empty id")
		}
		for _, key := range append([]game.Archetype{a.ID}, a.Aliases...) {
			if _, dup := c.archetypes[key]; dup {
				return nil, fmt.Errorf("duplicate archetype %q", key)
			}
			c.archetypes[key] = a.ID
		}
	}

	c.actions = make(map[game.ActionID]Action)
	silences := 0
	for _, a := range c.Actions {
		if strings.TrimSpace(string(a.ID)) == "" {
			return nil, errors.New("action with empty id")
		}
		if _, dup := c.actions[a.ID]; dup {
			return nil, fmt.Errorf("duplicate action %q", a.ID)
		}
		if a.Silence {
			silences++
		}
		if a.Label == "" {
			a.Label = string(a.ID)
		}
		c.actions[a.ID] = a
	}
	if silences > 1 {
		return nil, errors.New("catalog declares more than one silence action")
	}
	return &c, nil
}

// ResolveArchetype maps an id or alias to the canonical archetype.
func (c *Catalog) ResolveArchetype(id game.Archetype) (game.Archetype, bool) {
	a, ok := c.archetypes[id]
	return a, ok
}

// Archetype returns the entry for a canonical id or alias.
func (c *Catalog) Archetype(id game.Archetype) (Archetype, bool) {
	canon, ok := c.archetypes[id]
	if !ok {
		return Archetype{}, false
	}
	for _, a := range c.Archetypes {
		if a.ID == canon {
			return a, true
		}
	}
	return Archetype{}, false
}

// Action returns the catalog entry for id.
func (c *Catalog) Action(id game.ActionID) (Action, bool) {
	a, ok := c.actions[id]
	return a, ok
}

// IsSilence reports whether id is the monitor/silence action.
func (c *Catalog) IsSilence(id game.ActionID) bool {
	return c.actions[id].Silence
}
