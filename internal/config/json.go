package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/timberhoa/rollcall/internal/flagx"
	"github.com/timberhoa/rollcall/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so intervals can be given either as strings like "5s" or as
// integer nanoseconds. Pointer fields distinguish "absent" from zero values.
type JsonConfig struct {
	ListenAddr       *string         `json:"listen_addr"`
	RosterAPIBaseURL *string         `json:"roster_api_base_url"`
	RequestTimeout   *timex.Duration `json:"request_timeout"`
	AcceptThreshold  *float64        `json:"accept_threshold"`
	DatabasePath     *string         `json:"database_path"`
	SyncInterval     *timex.Duration `json:"sync_interval"`
	UIOrigin         *string         `json:"ui_origin"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c / -config flags; when neither is given, nothing is
// loaded. Read or unmarshal errors panic, matching the flag-parsing behavior.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ListenAddr != nil {
		cfg.ListenAddr = *jc.ListenAddr
	}
	if jc.RosterAPIBaseURL != nil {
		cfg.RosterAPIBaseURL = *jc.RosterAPIBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.AcceptThreshold != nil {
		cfg.AcceptThreshold = *jc.AcceptThreshold
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.SyncInterval != nil {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
	if jc.UIOrigin != nil {
		cfg.UIOrigin = *jc.UIOrigin
	}
}
