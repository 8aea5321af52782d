// Package store owns the local drive index: the database handle, its schema
// migrations and the transaction scope that every write goes through.
//
// A Store is opened once and closed once. All writes happen inside
// Transaction; reads are available directly on the Store. Inside a
// transaction body only the Tx handle may be used: with the SQLite engine
// the store keeps a single connection, so calling Store methods from the
// body would wait for the body itself.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/drivemirror/internal/client/cursor"
	"github.com/dmitrijs2005/drivemirror/internal/client/migrations"
	"github.com/dmitrijs2005/drivemirror/internal/client/models"
	"github.com/dmitrijs2005/drivemirror/internal/client/repositories/cursors"
	"github.com/dmitrijs2005/drivemirror/internal/client/repositories/files"
	"github.com/dmitrijs2005/drivemirror/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/drivemirror/internal/common"
	"github.com/dmitrijs2005/drivemirror/internal/dbx"
	"github.com/dmitrijs2005/drivemirror/internal/logging"
)

// Driver names a supported storage engine.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA foreign_keys = ON",
}

// IsFilePath reports whether dsn names a plain SQLite database file, as
// opposed to an in-memory database, a URI or a server connection string.
func IsFilePath(d Driver, dsn string) bool {
	if d != DriverSQLite && d != "" {
		return false
	}
	return dsn != "" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:")
}

// withImmediateTxLock makes BEGIN take the write lock up front, so a second
// process waits on busy_timeout instead of failing a deferred lock upgrade.
func withImmediateTxLock(dsn string) string {
	if strings.Contains(dsn, "_txlock=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_txlock=immediate"
}

type Options struct {
	Driver Driver
	DSN    string
	Logger logging.Logger
}

type Store struct {
	db      *sql.DB
	dialect dbx.Dialect
	log     logging.Logger

	mu     sync.RWMutex
	closed bool
}

// Tx is the transactional view of the store handed to Transaction bodies.
type Tx struct {
	files.Repository
	Cursors *cursors.Repository
}

// Open connects to the engine named by opts.Driver and migrates the schema
// to the latest version.
func Open(ctx context.Context, opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	var (
		db      *sql.DB
		err     error
		dialect dbx.Dialect
		gd      goose.Dialect
	)

	switch opts.Driver {
	case DriverSQLite, "":
		dsn := opts.DSN
		if dsn == "" {
			dsn = ":memory:"
		}
		db, err = sql.Open("sqlite", withImmediateTxLock(dsn))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// One connection serialises transaction bodies and keeps an
		// in-memory database alive for the lifetime of the store.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		for _, pragma := range sqlitePragmas {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
			}
		}
		dialect, gd = dbx.DialectSQLite, goose.DialectSQLite3
	case DriverPostgres:
		db, err = sql.Open("pgx", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		dialect, gd = dbx.DialectPostgres, goose.DialectPostgres
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedDriver, opts.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Driver, err)
	}

	if err := migrate(ctx, db, gd, dialect, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	return New(db, dialect, log), nil
}

// New wraps an already migrated database handle.
func New(db *sql.DB, dialect dbx.Dialect, log logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{db: db, dialect: dialect, log: log}
}

func migrate(ctx context.Context, db *sql.DB, gd goose.Dialect, d dbx.Dialect, log logging.Logger) error {
	fsys := migrations.SQLite()
	if d == dbx.DialectPostgres {
		fsys = migrations.Postgres()
	}

	p, err := goose.NewProvider(gd, db, fsys)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		log.Info(ctx, "migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// Close releases the database. It is safe to call more than once and waits
// for running transactions to finish.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Transaction runs fn inside one database transaction. The transaction
// commits only when fn returns nil; an error, a panic or a cancelled context
// rolls it back. Errors are returned unchanged and never retried.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return common.ErrStoreClosed
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, h dbx.DBTX) error {
		return fn(ctx, s.bind(h))
	})
}

func (s *Store) bind(h dbx.DBTX) *Tx {
	b := dbx.Bind(h, s.dialect)
	return &Tx{
		Repository: files.NewSQLRepository(b),
		Cursors:    cursors.NewRepository(metadata.NewSQLRepository(b)),
	}
}

// read runs fn against the plain database handle.
func (s *Store) read(fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return common.ErrStoreClosed
	}
	return fn(s.bind(s.db))
}

func (s *Store) SelectAll(ctx context.Context) (out []models.IndexRecord, err error) {
	err = s.read(func(tx *Tx) error {
		out, err = tx.SelectAll(ctx)
		return err
	})
	return out, err
}

func (s *Store) CountAll(ctx context.Context) (n int, err error) {
	err = s.read(func(tx *Tx) error {
		n, err = tx.CountAll(ctx)
		return err
	})
	return n, err
}

func (s *Store) CountByState(ctx context.Context, state models.FileState) (n int, err error) {
	err = s.read(func(tx *Tx) error {
		n, err = tx.CountByState(ctx, state)
		return err
	})
	return n, err
}

func (s *Store) Get(ctx context.Context, key models.FileKey) (rec *models.IndexRecord, err error) {
	err = s.read(func(tx *Tx) error {
		rec, err = tx.Get(ctx, key)
		return err
	})
	return rec, err
}

func (s *Store) TagsFor(ctx context.Context, key models.FileKey) (out []models.TagRecord, err error) {
	err = s.read(func(tx *Tx) error {
		out, err = tx.TagsFor(ctx, key)
		return err
	})
	return out, err
}

func (s *Store) LocalTagsFor(ctx context.Context, key models.FileKey) (out []models.LocalTagRecord, err error) {
	err = s.read(func(tx *Tx) error {
		out, err = tx.LocalTagsFor(ctx, key)
		return err
	})
	return out, err
}

// LoadCursor returns the cursor saved for streamKey, or nil.
func (s *Store) LoadCursor(ctx context.Context, streamKey string) (c *cursor.Cursor, err error) {
	err = s.read(func(tx *Tx) error {
		c, err = tx.Cursors.Load(ctx, streamKey)
		return err
	})
	return c, err
}

// DeleteCursor forgets the cursor of streamKey.
func (s *Store) DeleteCursor(ctx context.Context, streamKey string) error {
	return s.read(func(tx *Tx) error {
		return tx.Cursors.Delete(ctx, streamKey)
	})
}
