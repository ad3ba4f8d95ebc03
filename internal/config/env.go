package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with environment variables. A .env file in the
// working directory is loaded first if present; missing files are not an
// error. Malformed values are ignored, leaving the previous value in place.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("ROLLCALL_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("ROLLCALL_ROSTER_API"); v != "" {
		cfg.RosterAPIBaseURL = v
	}
	if v := os.Getenv("ROLLCALL_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("ROLLCALL_ACCEPT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.AcceptThreshold = f
		}
	}
	if v := os.Getenv("ROLLCALL_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("ROLLCALL_SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SyncInterval = d
		}
	}
	if v := os.Getenv("ROLLCALL_UI_ORIGIN"); v != "" {
		cfg.UIOrigin = v
	}
}
