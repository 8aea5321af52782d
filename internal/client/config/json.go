package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/drivemirror/internal/flagx"
)

// Duration accepts either a Go duration string ("3s") or integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		d.Duration = time.Duration(x)
	case string:
		p, err := time.ParseDuration(x)
		if err != nil {
			return err
		}
		d.Duration = p
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero-valued fields that are absent from the file leave the Config as is.
type JsonConfig struct {
	IdentityURL     string  `json:"identity_url"`
	DatabaseDriver  string  `json:"database_driver"`
	DatabaseDSN     string  `json:"database_dsn"`
	SecretsPath     string  `json:"secrets_path"`
	Drives          []Drive `json:"drives"`
	MaxRecords      int     `json:"max_records"`
	MaxGetURLLength int     `json:"max_get_url_length"`
	SyncParallelism int     `json:"sync_parallelism"`
	Decrypt         *bool   `json:"decrypt"`
	PurgeDeleted    *bool   `json:"purge_deleted"`

	SyncInterval        *Duration `json:"sync_interval"`
	OnlineCheckInterval *Duration `json:"online_check_interval"`
	RequestTimeout      *Duration `json:"request_timeout"`

	LogFile  string `json:"log_file"`
	LogLevel string `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without either flag nothing is loaded. Read and decode
// errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.IdentityURL, jc.IdentityURL)
	setString(&cfg.DatabaseDriver, jc.DatabaseDriver)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.SecretsPath, jc.SecretsPath)
	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.LogLevel, jc.LogLevel)

	if len(jc.Drives) > 0 {
		cfg.Drives = jc.Drives
	}
	if jc.MaxRecords > 0 {
		cfg.MaxRecords = jc.MaxRecords
	}
	if jc.MaxGetURLLength > 0 {
		cfg.MaxGetURLLength = jc.MaxGetURLLength
	}
	if jc.SyncParallelism > 0 {
		cfg.SyncParallelism = jc.SyncParallelism
	}
	if jc.Decrypt != nil {
		cfg.Decrypt = *jc.Decrypt
	}
	if jc.PurgeDeleted != nil {
		cfg.PurgeDeleted = *jc.PurgeDeleted
	}
	if jc.SyncInterval != nil {
		cfg.SyncInterval = jc.SyncInterval.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
