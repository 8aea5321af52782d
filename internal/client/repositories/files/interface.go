package files

import (
	"context"

	"github.com/dmitrijs2005/drivemirror/internal/client/models"
)

// Repository describes the operations on the drive index tables.
type Repository interface {
	// UpsertRecord inserts the row or replaces every column of the row with
	// the same key.
	UpsertRecord(ctx context.Context, rec models.IndexRecord) error

	// ReplaceTags deletes all tag and local tag rows of the file and inserts
	// the given ones.
	ReplaceTags(ctx context.Context, key models.FileKey, tags []models.TagRecord, localTags []models.LocalTagRecord) error

	// DeleteRecord removes the row and its tags. Missing rows are not an error.
	DeleteRecord(ctx context.Context, key models.FileKey) error

	// Get returns the row for key or common.ErrorNotFound.
	Get(ctx context.Context, key models.FileKey) (*models.IndexRecord, error)

	SelectAll(ctx context.Context) ([]models.IndexRecord, error)
	CountAll(ctx context.Context) (int, error)
	CountByState(ctx context.Context, state models.FileState) (int, error)

	TagsFor(ctx context.Context, key models.FileKey) ([]models.TagRecord, error)
	LocalTagsFor(ctx context.Context, key models.FileKey) ([]models.LocalTagRecord, error)
}
