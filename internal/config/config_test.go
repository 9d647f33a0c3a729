package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	c, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", c.APIURL)
	assert.Equal(t, 30*time.Second, c.GatewayTimeout)
	assert.Equal(t, "5175", c.Port)
	assert.Equal(t, 2*time.Hour, c.SessionTTL)
	assert.False(t, c.Production)
	assert.True(t, c.LedgerEnabled)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("DAMAGE_CONTROL_API_URL", "https://dc.example.com")
	t.Setenv("GATEWAY_TIMEOUT", "5s")
	t.Setenv("LEDGER_ENABLED", "false")
	t.Setenv("NODE_ENV", "production")

	c, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "https://dc.example.com", c.APIURL)
	assert.Equal(t, 5*time.Second, c.GatewayTimeout)
	assert.True(t, c.Production)
	assert.False(t, c.LedgerEnabled)
}

func TestParse_RejectsBadValues(t *testing.T) {
	t.Setenv("GATEWAY_TIMEOUT", "soon")
	_, err := Parse()
	assert.Error(t, err)

	t.Setenv("GATEWAY_TIMEOUT", "-1s")
	_, err = Parse()
	assert.Error(t, err)
}
