// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// a helper to run functions inside a transaction, and placeholder
// rebinding so the same statements run on SQLite and PostgreSQL.
package dbx

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect selects the placeholder style of the underlying engine.
type Dialect int

const (
	// DialectSQLite uses '?' placeholders.
	DialectSQLite Dialect = iota
	// DialectPostgres uses '$1, $2, ...' placeholders.
	DialectPostgres
)

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
// A context cancelled while fn runs makes database/sql roll the transaction
// back, and the commit then fails with the context error.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    // use tx instead of db
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// Rebind rewrites '?' placeholders for the given dialect. Question marks
// inside single-quoted literals are left alone.
func Rebind(d Dialect, query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	quoted := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
			b.WriteByte(c)
		case c == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Rebound wraps a DBTX and rebinds every statement for its dialect.
type Rebound struct {
	DBTX
	dialect Dialect
}

// Bind returns db unchanged for SQLite and a rebinding wrapper otherwise.
func Bind(db DBTX, d Dialect) DBTX {
	if d == DialectSQLite {
		return db
	}
	return &Rebound{DBTX: db, dialect: d}
}

func (r *Rebound) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.DBTX.ExecContext(ctx, Rebind(r.dialect, query), args...)
}

func (r *Rebound) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.DBTX.QueryContext(ctx, Rebind(r.dialect, query), args...)
}

func (r *Rebound) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return r.DBTX.QueryRowContext(ctx, Rebind(r.dialect, query), args...)
}
