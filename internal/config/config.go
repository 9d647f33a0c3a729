// internal/config/config.go
//
// Process configuration, read from the environment.
//
// Environment variables (defaults in brackets):
//   DAMAGE_CONTROL_API_URL  base URL of the narrative/scoring backend [http://localhost:5000]
//   GATEWAY_TIMEOUT         bound on each backend call [30s]
//   LOG_LEVEL               zerolog level [info]
//   LOG_FILE                log destination for `play` (empty: discard)
//   PORT                    listen port for `serve` [5175]
//   DB_PATH                 SQLite ledger path [./data/damage-control.db]
//   LEDGER_ENABLED          record finished matches in the ledger [true]
//   SESSION_SECRET          HMAC key for the session cookie [dev_secret_change_me]
//   SESSION_TTL             idle time before a served session is dropped [2h]
//   CLIENT_ORIGIN           allowed CORS origin for `serve` [http://localhost:5173]
//   DAILY_SALT              salt for the featured archetype of the day [local_dev_salt]
//   CATALOG_FILE            archetype/action catalog override (empty: embedded)
//   NODE_ENV                "production" marks cookies Secure

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the client.
type Config struct {
	APIURL         string        `env:"DAMAGE_CONTROL_API_URL" envDefault:"http://localhost:5000"`
	GatewayTimeout time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"30s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile        string        `env:"LOG_FILE"`
	Port           string        `env:"PORT" envDefault:"5175"`
	DBPath         string        `env:"DB_PATH" envDefault:"./data/damage-control.db"`
	LedgerEnabled  bool          `env:"LEDGER_ENABLED" envDefault:"true"`
	SessionSecret  string        `env:"SESSION_SECRET" envDefault:"dev_secret_change_me"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	DailySalt      string        `env:"DAILY_SALT" envDefault:"local_dev_salt"`
	CatalogFile    string        `env:"CATALOG_FILE"`
	NodeEnv        string        `env:"NODE_ENV"`

	// Production is derived from NodeEnv.
	Production bool
}

// Load reads .env (if present) and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if c.GatewayTimeout < 0 {
		return Config{}, fmt.Errorf("GATEWAY_TIMEOUT must not be negative, got %s", c.GatewayTimeout)
	}
	c.Production = c.NodeEnv == "production"
	return c, nil
}
