package driveapi

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/drivemirror/internal/common"
	"github.com/dmitrijs2005/drivemirror/internal/cryptox"
)

// decryptResults replaces encrypted app-data content in place. A record that
// cannot be decrypted keeps its content and gets DecryptError; only a missing
// shared secret fails the whole batch.
func (c *Client) decryptResults(ctx context.Context, results []SearchResult) error {
	var secret []byte

	for i := range results {
		r := &results[i]
		if !r.FileMetadata.IsEncrypted || r.FileMetadata.AppData.Content == "" {
			continue
		}

		if secret == nil {
			if c.secrets == nil {
				return common.ErrNoSharedSecret
			}
			s, err := c.secrets.SharedSecret(ctx)
			if err != nil {
				return fmt.Errorf("%w: %v", common.ErrNoSharedSecret, err)
			}
			if len(s) == 0 {
				return common.ErrNoSharedSecret
			}
			secret = s
		}

		plain, err := DecryptContent(r.SharedSecretEncryptedKeyHeader, r.FileMetadata.AppData.Content, secret)
		if err != nil {
			r.DecryptError = err
			c.log.Warn(ctx, "content decrypt failed", "file_id", r.FileID, "error", err)
			continue
		}
		r.FileMetadata.AppData.Content = string(plain)
	}

	return nil
}

// DecryptContent unwraps ekh with secret and decrypts base64 content with
// the resulting key.
func DecryptContent(ekh *cryptox.EncryptedKeyHeader, content string, secret []byte) ([]byte, error) {
	kh, err := cryptox.DecryptKeyHeader(ekh, secret)
	if err != nil {
		return nil, err
	}
	defer kh.Wipe()

	ct, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("content encoding: %w", err)
	}

	plain, err := kh.DecryptContent(ct)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	return plain, nil
}

// EncryptContent is the inverse of DecryptContent. It returns the key header
// sealed with secret and the base64 ciphertext.
func EncryptContent(plain []byte, secret []byte) (*cryptox.EncryptedKeyHeader, string, error) {
	kh, err := cryptox.NewKeyHeader()
	if err != nil {
		return nil, "", err
	}
	defer kh.Wipe()

	ct, err := kh.EncryptContent(plain)
	if err != nil {
		return nil, "", err
	}

	ekh, err := cryptox.EncryptKeyHeader(kh, secret)
	if err != nil {
		return nil, "", err
	}
	return ekh, base64.StdEncoding.EncodeToString(ct), nil
}
