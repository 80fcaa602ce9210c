package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/journalkeeper/internal/flagx"
	"github.com/dmitrijs2005/journalkeeper/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so the lock timeout can be given either as a string like
// "10s" or as integer nanoseconds.
type jsonConfig struct {
	DataDir       *string         `json:"data_dir"`
	Account       *string         `json:"account"`
	TimeZone      *string         `json:"time_zone"`
	RetentionDays *int            `json:"retention_days"`
	LockTimeout   *timex.Duration `json:"lock_timeout"`
}

// parseJSON overlays cfg with values from the JSON file named by -c/-config.
// Absent flags mean no JSON is loaded; absent JSON keys leave the current
// value untouched. Read or unmarshal errors panic, matching the
// fail-fast-at-startup behavior of the rest of the config layer.
func parseJSON(cfg *Config) {
	path := flagx.JSONConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DataDir != nil {
		cfg.DataDir = *jc.DataDir
	}
	if jc.Account != nil {
		cfg.Account = *jc.Account
	}
	if jc.TimeZone != nil {
		cfg.TimeZone = *jc.TimeZone
	}
	if jc.RetentionDays != nil {
		cfg.RetentionDays = *jc.RetentionDays
	}
	if jc.LockTimeout != nil {
		cfg.LockTimeout = jc.LockTimeout.Duration
	}
}
