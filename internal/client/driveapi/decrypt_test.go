package driveapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/drivemirror/internal/common"
	"github.com/dmitrijs2005/drivemirror/internal/cryptox"
)

// Known-answer vector produced outside this package: shared secret 32 x 0x07,
// key header iv a0..ab, aes key 20..3f, wrapped under HKDF-SHA256
// ("drive-key-header", salt = header iv 00..0b) with AES-256-GCM.
const (
	fixtureEncryptedAesKey = "gQK36WHW8QCDZKpDTLufTA3zID+eynbswfUykLmRMihU6x7gjn6ehVCq6Uc+/f7b28AZU4T/iHxmdU6d"
	fixtureHeaderIv        = "AAECAwQFBgcICQoL"
	fixtureContent         = "BR7JUbek4c3ECpeYTjgayv5fp3VT2QZWZ/frnaEP2Z09KOdDrUnzeebeQLlSrSQLmC0="
	fixturePlaintext       = `{"message":"hello from the drive"}`
)

var fixtureSecret = bytes.Repeat([]byte{0x07}, 32)

func TestQueryBatch_DecryptsKnownWireFixture(t *testing.T) {
	body := `{"cursorState":"c1","searchResults":[{
		"fileId":"f1","fileState":"active",
		"sharedSecretEncryptedKeyHeader":{"encryptionVersion":1,"type":"aes",
			"iv":"` + fixtureHeaderIv + `","encryptedAesKey":"` + fixtureEncryptedAesKey + `"},
		"fileMetadata":{"created":1,"updated":2,"isEncrypted":true,
			"appData":{"fileType":7,"content":"` + fixtureContent + `"}}}]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, Options{Secrets: staticSecret(fixtureSecret)})
	got, err := c.QueryBatch(context.Background(), baseRequest(), &QueryBatchOptions{Decrypt: true})
	require.NoError(t, err)
	require.Len(t, got.SearchResults, 1)

	assert.NoError(t, got.SearchResults[0].DecryptError)
	assert.Equal(t, fixturePlaintext, got.SearchResults[0].FileMetadata.AppData.Content)
}

func TestDecryptContent_KnownAnswer(t *testing.T) {
	iv, err := base64.StdEncoding.DecodeString(fixtureHeaderIv)
	require.NoError(t, err)
	wrapped, err := base64.StdEncoding.DecodeString(fixtureEncryptedAesKey)
	require.NoError(t, err)

	ekh := &cryptox.EncryptedKeyHeader{EncryptionVersion: 1, Type: "aes", Iv: iv, EncryptedAesKey: wrapped}

	kh, err := cryptox.DecryptKeyHeader(ekh, fixtureSecret)
	require.NoError(t, err)
	assert.Equal(t, "a0a1a2a3a4a5a6a7a8a9aaab", hex.EncodeToString(kh.Iv))
	assert.Equal(t, "202122232425262728292a2b2c2d2e2f303132333435363738393a3b3c3d3e3f", hex.EncodeToString(kh.AesKey))

	plain, err := DecryptContent(ekh, fixtureContent, fixtureSecret)
	require.NoError(t, err)
	assert.Equal(t, fixturePlaintext, string(plain))

	_, err = DecryptContent(ekh, fixtureContent, bytes.Repeat([]byte{0x08}, 32))
	assert.ErrorIs(t, err, common.ErrInvalidKeyHeader)
}
