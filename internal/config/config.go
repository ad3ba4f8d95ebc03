// Package config handles configuration for the attendance console, including
// defaults, .env/environment overlay, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the console.
//
// Fields:
//   - ListenAddr: bind address for the browser-facing HTTP endpoint.
//   - RosterAPIBaseURL: base URL of the remote roster service.
//   - RequestTimeout: bound on every remote roster call.
//   - AcceptThreshold: minimum recognition confidence accepted as a match.
//   - DatabasePath: SQLite file holding the persisted local roster state.
//   - SyncInterval: how often the store refreshes from the remote service.
//     Zero disables the periodic refresh.
//   - UIOrigin: origin allowed by CORS for the browser console.
type Config struct {
	ListenAddr       string
	RosterAPIBaseURL string
	RequestTimeout   time.Duration
	AcceptThreshold  float64
	DatabasePath     string
	SyncInterval     time.Duration
	UIOrigin         string
}

// LoadDefaults populates c with sensible development defaults.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.RosterAPIBaseURL = "http://127.0.0.1:3001"
	c.RequestTimeout = 5 * time.Second
	c.AcceptThreshold = 0.8
	c.DatabasePath = "roster.db"
	c.SyncInterval = 30 * time.Second
	c.UIOrigin = "http://localhost:5173"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (including an optional .env file), a JSON file (if given),
// and command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
