package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "sqlite", c.DatabaseDriver)
	assert.Equal(t, 100, c.MaxRecords)
	assert.Equal(t, 1800, c.MaxGetURLLength)
	assert.Equal(t, 4, c.SyncParallelism)
	assert.True(t, c.Decrypt)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:8080/api/v2", cfg.IdentityURL)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"identity_url": "https://json.example/api",
		"max_records":  50,
		"database_dsn": "from-json.db",
	})
	os.Args = []string{"testbin", "sync", "-c", path, "-a", "https://flag.example/api"}

	cfg := LoadConfig()

	assert.Equal(t, "https://flag.example/api", cfg.IdentityURL)
	assert.Equal(t, 50, cfg.MaxRecords)
	assert.Equal(t, "from-json.db", cfg.DatabaseDSN)
	assert.Equal(t, 1800, cfg.MaxGetURLLength)
}

func TestLoadConfig_SubSecondIntervalsFromJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"online_check_interval": "500ms",
		"sync_interval":         "1500ms",
	})
	os.Args = []string{"testbin", "watch", "-c", path}

	cfg := LoadConfig()

	assert.Equal(t, 500*time.Millisecond, cfg.OnlineCheckInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.SyncInterval)
}
