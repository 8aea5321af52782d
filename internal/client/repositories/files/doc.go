// Package files provides the client-side persistence layer for the drive
// index: one row per remote file plus its server and local tag rows.
//
// # Overview
//
// The package defines a Repository interface for upserting index rows,
// replacing tag sets and reading the index back. SQLRepository persists data
// via a dbx.DBTX (*sql.DB or *sql.Tx), so every call made with a transaction
// handle joins the caller's transaction.
//
// Key Types
//
//   - type Repository     contract used by the store and the sync services
//   - type SQLRepository  SQL implementation over dbx.DBTX
//
// Typical Usage
//
//	repo := files.NewSQLRepository(tx)
//	_ = repo.UpsertRecord(ctx, rec)
//	_ = repo.ReplaceTags(ctx, rec.FileKey, tags, localTags)
//	all, _ := repo.SelectAll(ctx)
//
// See also: internal/client/models.IndexRecord for field semantics.
package files
