// Package config assembles runtime settings from defaults, an optional
// JSON file and command-line flags, in that order of precedence.
package config

import (
	"path/filepath"
	"time"
)

// ArtifactFilename is the fixed name of the encrypted journal artifact
// inside an account directory.
const ArtifactFilename = "journal_entries.csv.enc"

// Config holds runtime settings for the journal keeper.
//
// Fields:
//   - DataDir: root directory holding one subdirectory per account.
//   - Account: the logical user; selects <DataDir>/<Account>/.
//   - TimeZone: IANA name of the canonical zone used for "today" in backup
//     naming and for local timestamps.
//   - RetentionDays: how many daily snapshots to keep.
//   - LockTimeout: how long operations wait for the artifact lock before
//     aborting with a lock-unavailable error. Zero means wait indefinitely.
type Config struct {
	DataDir       string
	Account       string
	TimeZone      string
	RetentionDays int
	LockTimeout   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "data"
	c.Account = "default"
	c.TimeZone = "Europe/Athens"
	c.RetentionDays = 14
	c.LockTimeout = 10 * time.Second
}

// ArtifactPath returns the artifact location for the configured account.
func (c *Config) ArtifactPath() string {
	return filepath.Join(c.DataDir, c.Account, ArtifactFilename)
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
