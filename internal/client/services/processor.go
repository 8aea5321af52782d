// Package services holds the client workflows built on the local store and
// the drive API: applying fetched batches, the sync driver and the
// connectivity watcher.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/drivemirror/internal/client/cursor"
	"github.com/dmitrijs2005/drivemirror/internal/client/models"
	"github.com/dmitrijs2005/drivemirror/internal/client/store"
	"github.com/dmitrijs2005/drivemirror/internal/common"
	"github.com/dmitrijs2005/drivemirror/internal/logging"
)

// Transactor runs a function inside one store transaction.
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context, tx *store.Tx) error) error
}

// Batch is everything written for one file in one transaction.
type Batch struct {
	Record    models.IndexRecord
	Tags      []models.TagRecord
	LocalTags []models.LocalTagRecord

	// Cursor, when set, is saved under StreamKey in the same transaction.
	Cursor    *cursor.Cursor
	StreamKey string

	// Purge removes the file from the index instead of upserting it.
	Purge bool
}

func (b *Batch) validate() error {
	key := b.Record.FileKey
	if key.IdentityID == "" || key.DriveID == "" || key.FileID == "" {
		return fmt.Errorf("%w: incomplete key %+v", common.ErrInvalidRecord, key)
	}
	if !b.Purge && !b.Record.FileState.Valid() {
		return fmt.Errorf("%w: file state %q", common.ErrInvalidRecord, b.Record.FileState)
	}
	for _, t := range b.Tags {
		if t.FileKey != key {
			return fmt.Errorf("%w: tag %s", common.ErrTagScope, t.TagID)
		}
	}
	for _, t := range b.LocalTags {
		if t.FileKey != key {
			return fmt.Errorf("%w: local tag %s", common.ErrTagScope, t.TagID)
		}
	}
	if b.Cursor != nil && b.StreamKey == "" {
		return common.ErrStreamKeyRequired
	}
	return nil
}

// FileMetadataProcessor applies batches to the store. It holds no state of
// its own and is safe for concurrent use.
type FileMetadataProcessor struct {
	store Transactor
	log   logging.Logger
}

func NewFileMetadataProcessor(st Transactor, log logging.Logger) *FileMetadataProcessor {
	if log == nil {
		log = logging.Discard()
	}
	return &FileMetadataProcessor{store: st, log: log}
}

// ApplyBatch writes the record, replaces its tags and saves the cursor as
// one unit. On error nothing of the batch is visible.
func (p *FileMetadataProcessor) ApplyBatch(ctx context.Context, b Batch) error {
	if err := b.validate(); err != nil {
		return err
	}

	key := b.Record.FileKey
	err := p.store.Transaction(ctx, func(ctx context.Context, tx *store.Tx) error {
		if b.Purge {
			if err := tx.DeleteRecord(ctx, key); err != nil {
				return err
			}
		} else {
			if err := tx.UpsertRecord(ctx, b.Record); err != nil {
				return err
			}
			if err := tx.ReplaceTags(ctx, key, b.Tags, b.LocalTags); err != nil {
				return err
			}
		}

		if b.Cursor != nil {
			if err := tx.Cursors.Save(ctx, b.StreamKey, b.Cursor); err != nil {
				return fmt.Errorf("save cursor: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply %s: %w", key.FileID, err)
	}

	p.log.Debug(ctx, "batch applied", "drive", key.DriveID, "file_id", key.FileID,
		"tags", len(b.Tags), "local_tags", len(b.LocalTags), "cursor", b.Cursor != nil)
	return nil
}

// ApplyBatches applies each batch in its own transaction and stops at the
// first failure. It returns how many batches were committed.
func (p *FileMetadataProcessor) ApplyBatches(ctx context.Context, batches []Batch) (int, error) {
	for i, b := range batches {
		if err := p.ApplyBatch(ctx, b); err != nil {
			return i, err
		}
	}
	return len(batches), nil
}
