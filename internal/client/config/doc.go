// Package config loads runtime configuration for the drive mirror.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// Intervals accept strings like "3s" or integer nanoseconds:
//
//	{
//	  "identity_url": "https://example.org/api/v2",
//	  "database_driver": "sqlite",
//	  "database_dsn": "mirror.db",
//	  "drives": [{"identity_id": "frodo.example", "drive_id": "chat", "drive_type": "chat"}],
//	  "max_records": 100,
//	  "online_check_interval": "3s",
//	  "sync_interval": "30s"
//	}
//
// Drives can only be configured in the JSON file.
package config
