package config

import "time"

// Drive names one remote drive to mirror.
type Drive struct {
	IdentityID string `json:"identity_id"`
	DriveID    string `json:"drive_id"`
	DriveType  string `json:"drive_type"`
	FileTypes  []int  `json:"file_types,omitempty"`
}

// Config holds runtime settings for the drive mirror.
//
// Units: all intervals are time.Duration values.
type Config struct {
	IdentityURL     string
	DatabaseDriver  string
	DatabaseDSN     string
	SecretsPath     string
	Drives          []Drive
	MaxRecords      int
	MaxGetURLLength int
	SyncParallelism int
	Decrypt         bool
	PurgeDeleted    bool

	SyncInterval        time.Duration
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration

	LogFile  string
	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.IdentityURL = "http://127.0.0.1:8080/api/v2"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "drivemirror.db"
	c.SecretsPath = "drivemirror.secrets"
	c.MaxRecords = 100
	c.MaxGetURLLength = 1800
	c.SyncParallelism = 4
	c.Decrypt = true
	c.SyncInterval = 30 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
