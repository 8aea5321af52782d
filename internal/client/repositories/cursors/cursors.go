// Package cursors persists sync cursors in the key/value table. A repository
// built over a transaction handle saves the cursor inside that transaction,
// so a cursor never commits without the rows it describes.
package cursors

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/drivemirror/internal/client/cursor"
	"github.com/dmitrijs2005/drivemirror/internal/client/repositories/metadata"
)

const keyPrefix = "cursor:"

// StreamKey returns the key under which the cursor of one identity's drive
// is stored. Drive aliases repeat across identities, so both parts are needed.
func StreamKey(identityID, driveID string) string {
	return keyPrefix + identityID + ":" + driveID
}

type Repository struct {
	kv metadata.Repository
}

func NewRepository(kv metadata.Repository) *Repository {
	return &Repository{kv: kv}
}

// Load returns the saved cursor, or (nil, nil) when the stream has none.
func (r *Repository) Load(ctx context.Context, streamKey string) (*cursor.Cursor, error) {
	raw, err := r.kv.Get(ctx, streamKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	c, err := cursor.Decode(string(raw))
	if err != nil {
		return nil, fmt.Errorf("stored cursor %s: %w", streamKey, err)
	}
	return c, nil
}

// Save upserts the cursor. A nil cursor is a no-op.
func (r *Repository) Save(ctx context.Context, streamKey string, c *cursor.Cursor) error {
	if c == nil {
		return nil
	}
	return r.kv.Set(ctx, streamKey, []byte(c.Encode()))
}

func (r *Repository) Delete(ctx context.Context, streamKey string) error {
	return r.kv.Delete(ctx, streamKey)
}
