// Package metadata provides the key/value table of the local store. It holds
// small opaque values such as sync cursors.
package metadata

import (
	"context"
)

// Repository is a byte-valued key/value table. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
