package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/damage-control/apps/go-client/internal/game"
)

func TestLoad_EmbeddedDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Len(t, c.Archetypes, 4)
	assert.Len(t, c.Actions, 6)
	assert.True(t, c.IsSilence("Monitor Situation"))
	assert.False(t, c.IsSilence("Public Apology"))
	assert.False(t, c.IsSilence("unknown"))

	canon, ok := c.ResolveArchetype(game.IndustrialTitan)
	require.True(t, ok)
	assert.Equal(t, game.LegacyTitan, canon)

	a, ok := c.Archetype(game.TechUnicorn)
	require.True(t, ok)
	assert.Equal(t, "🦄", a.Icon)

	_, ok = c.ResolveArchetype("Crypto Exchange")
	assert.False(t, ok)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	doc := `{"archetypes":[{"id":"Tech Unicorn"}],
	         "actions":[{"id":"bribe"},{"id":"fire-ceo","label":"Fire the CEO"},{"id":"monitor","silence":true}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	bribe, ok := c.Action("bribe")
	require.True(t, ok)
	assert.Equal(t, "bribe", bribe.Label)
	assert.True(t, c.IsSilence("monitor"))
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"not json":        `{`,
		"no archetypes":   `{"archetypes":[],"actions":[{"id":"a"}]}`,
		"no actions":      `{"archetypes":[{"id":"x"}],"actions":[]}`,
		"dup archetype":   `{"archetypes":[{"id":"x"},{"id":"y","aliases":["x"]}],"actions":[{"id":"a"}]}`,
		"dup action":      `{"archetypes":[{"id":"x"}],"actions":[{"id":"a"},{"id":"a"}]}`,
		"empty action id": `{"archetypes":[{"id":"x"}],"actions":[{"id":" "}]}`,
		"two silences":    `{"archetypes":[{"id":"x"}],"actions":[{"id":"a","silence":true},{"id":"b","silence":true}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}
