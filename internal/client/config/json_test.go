package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"identity_url":          "https://www.example/api",
		"online_check_interval": "10s",
		"request_timeout":       int64(2 * time.Second),
		"purge_deleted":         true,
		"drives": []map[string]any{
			{"identity_id": "frodo.example", "drive_id": "chat", "drive_type": "chat", "file_types": []int{7}},
		},
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{Decrypt: true, MaxRecords: 100}
		parseJson(cfg)

		assert.Equal(t, "https://www.example/api", cfg.IdentityURL)
		assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
		assert.True(t, cfg.PurgeDeleted)
		assert.True(t, cfg.Decrypt, "absent booleans keep their value")
		assert.Equal(t, 100, cfg.MaxRecords, "absent numbers keep their value")
		assert.Equal(t, []Drive{{IdentityID: "frodo.example", DriveID: "chat", DriveType: "chat", FileTypes: []int{7}}}, cfg.Drives)
	})

	t.Run("no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			IdentityURL:         "http://defaults:1234",
			OnlineCheckInterval: 42 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, "http://defaults:1234", cfg.IdentityURL)
		assert.Equal(t, 42*time.Second, cfg.OnlineCheckInterval)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("invalid duration → panics", func(t *testing.T) {
		bad := writeTempJSON(t, dir, "dur.json", map[string]any{"sync_interval": "soon"})
		os.Args = []string{"testbin", "-c", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Duration)

	require.NoError(t, json.Unmarshal([]byte(`1500000000`), &d))
	assert.Equal(t, 1500*time.Millisecond, d.Duration)

	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}
