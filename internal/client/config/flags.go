package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/drivemirror/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-dsn", "-s", "-i", "-n", "-r", "-p", "-l", "-v"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   identity base URL of the drive API
//	-d string   database driver (sqlite or postgres)
//	-dsn string database DSN or sqlite file path
//	-s string   secrets file path
//	-i int      online check interval (in seconds)
//	-n int      sync interval for watch mode (in seconds)
//	-r int      max records per query page
//	-p int      number of drives synced in parallel
//	-l string   log file (empty logs to stderr)
//	-v string   log level
//
// os.Args is filtered with flagx.FilterArgs first so subcommand flags do not
// trip the parser. Non-positive intervals are left for the services to
// replace with their defaults.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.IdentityURL, "a", cfg.IdentityURL, "identity base URL of the drive API")
	fs.StringVar(&cfg.DatabaseDriver, "d", cfg.DatabaseDriver, "database driver (sqlite or postgres)")
	fs.StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretsPath, "s", cfg.SecretsPath, "secrets file path")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	syncInterval := fs.Int("n", int(cfg.SyncInterval.Seconds()), "sync interval (in seconds)")
	fs.IntVar(&cfg.MaxRecords, "r", cfg.MaxRecords, "max records per page")
	fs.IntVar(&cfg.SyncParallelism, "p", cfg.SyncParallelism, "drives synced in parallel")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Intervals are whole seconds on the command line; only explicit flags
	// replace a value that may carry sub-second precision from JSON.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		case "n":
			cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
		}
	})
}
