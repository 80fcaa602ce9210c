package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	saved := os.Args
	os.Args = append([]string{"journal"}, args...)
	t.Cleanup(func() { os.Args = saved })
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, "default", c.Account)
	assert.Equal(t, "Europe/Athens", c.TimeZone)
	assert.Equal(t, 14, c.RetentionDays)
	assert.Equal(t, 10*time.Second, c.LockTimeout)
}

func TestArtifactPath(t *testing.T) {
	c := Config{DataDir: "data", Account: "alice"}
	assert.Equal(t, filepath.Join("data", "alice", ArtifactFilename), c.ArtifactPath())
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	withArgs(t, "-d", "/tmp/journals", "-u", "alice", "-r", "7", "-t", "0")

	cfg := LoadConfig()
	assert.Equal(t, "/tmp/journals", cfg.DataDir)
	assert.Equal(t, "alice", cfg.Account)
	assert.Equal(t, 7, cfg.RetentionDays)
	assert.Equal(t, time.Duration(0), cfg.LockTimeout)
	// Untouched field keeps its default.
	assert.Equal(t, "Europe/Athens", cfg.TimeZone)
}

func TestLoadConfig_JSONOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"data_dir": "/srv/journals",
		"retention_days": 30,
		"lock_timeout": "5s"
	}`), 0o600))

	withArgs(t, "-c", path)

	cfg := LoadConfig()
	assert.Equal(t, "/srv/journals", cfg.DataDir)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout)
	assert.Equal(t, "default", cfg.Account)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"account": "from-json"}`), 0o600))

	withArgs(t, "-c", path, "-u", "from-flag")

	cfg := LoadConfig()
	assert.Equal(t, "from-flag", cfg.Account)
}
