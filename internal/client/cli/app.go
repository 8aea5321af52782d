package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/drivemirror/internal/client/config"
	"github.com/dmitrijs2005/drivemirror/internal/client/driveapi"
	"github.com/dmitrijs2005/drivemirror/internal/client/events"
	"github.com/dmitrijs2005/drivemirror/internal/client/secrets"
	"github.com/dmitrijs2005/drivemirror/internal/client/services"
	"github.com/dmitrijs2005/drivemirror/internal/client/store"
	"github.com/dmitrijs2005/drivemirror/internal/cryptox"
	"github.com/dmitrijs2005/drivemirror/internal/filex"
	"github.com/dmitrijs2005/drivemirror/internal/logging"
)

// PassphraseEnv, when set, is used instead of prompting for the secret
// store passphrase.
const PassphraseEnv = "DRIVEMIRROR_PASSPHRASE"

type App struct {
	config *config.Config
	log    logging.Logger

	store   *store.Store
	secrets *secrets.Store
	api     *driveapi.Client
	bus     *events.Bus

	processor    *services.FileMetadataProcessor
	syncService  *services.SyncService
	connectivity *services.ConnectivityWatcher

	reader  *bufio.Reader
	closers []io.Closer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := preparePaths(c); err != nil {
		return nil, err
	}

	log, logCloser := logging.NewFileLogger(logging.FileOptions{
		Path:       c.LogFile,
		Level:      c.LogLevel,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	})

	a := &App{config: c, log: log, reader: bufio.NewReader(os.Stdin)}
	a.closers = append(a.closers, logCloser)

	st, err := store.Open(ctx, store.Options{
		Driver: store.Driver(c.DatabaseDriver),
		DSN:    c.DatabaseDSN,
		Logger: log,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	a.store = st
	a.closers = append(a.closers, st)

	sec, err := secrets.Open(c.SecretsPath)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.secrets = sec
	a.closers = append(a.closers, sec)

	a.api = driveapi.NewClient(c.IdentityURL, driveapi.Options{
		Timeout:         c.RequestTimeout,
		MaxGetURLLength: c.MaxGetURLLength,
		Tokens:          sec,
		Secrets:         sec,
		Logger:          log,
	})

	a.bus = events.NewBus(events.DefaultBusOptions)
	a.processor = services.NewFileMetadataProcessor(st, log)
	a.syncService = services.NewSyncService(a.api, st, a.processor, a.bus, log, services.SyncOptions{
		MaxRecords:   c.MaxRecords,
		Parallelism:  c.SyncParallelism,
		Decrypt:      c.Decrypt,
		PurgeDeleted: c.PurgeDeleted,
	})
	a.connectivity = services.NewConnectivityWatcher(a.api, a.bus, c.OnlineCheckInterval, log)

	return a, nil
}

// Close releases everything NewApp opened, newest first.
func (a *App) Close() error {
	if a.bus != nil {
		a.bus.Close()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// preparePaths creates the directories of the local files named in c.
func preparePaths(c *config.Config) error {
	paths := []*string{&c.SecretsPath}
	if c.LogFile != "" {
		paths = append(paths, &c.LogFile)
	}
	if store.IsFilePath(store.Driver(c.DatabaseDriver), c.DatabaseDSN) {
		paths = append(paths, &c.DatabaseDSN)
	}

	for _, p := range paths {
		abs, err := filex.EnsureParentDir(*p)
		if err != nil {
			return err
		}
		*p = abs
	}
	return nil
}

// targets converts the configured drives into sync targets.
func (a *App) targets() []services.DriveTarget {
	out := make([]services.DriveTarget, 0, len(a.config.Drives))
	for _, d := range a.config.Drives {
		out = append(out, services.DriveTarget{
			IdentityID: d.IdentityID,
			DriveID:    d.DriveID,
			DriveType:  d.DriveType,
			FileTypes:  d.FileTypes,
		})
	}
	return out
}

// unlock opens the secret store with the passphrase from the environment
// or, failing that, from the terminal.
func (a *App) unlock(w io.Writer) error {
	var pass []byte
	if v := os.Getenv(PassphraseEnv); v != "" {
		pass = []byte(v)
	} else {
		var err error
		if pass, err = GetPassword(w); err != nil {
			return err
		}
	}
	defer cryptox.Wipe(pass)

	return a.secrets.Unlock(pass)
}
