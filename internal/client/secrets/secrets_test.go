package secrets

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/drivemirror/internal/common"
)

func createTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.db")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func TestStore_LockedUntilUnlock(t *testing.T) {
	s, _ := createTestStore(t)
	defer s.Close()

	_, err := s.Get(KeyAccessToken)
	require.ErrorIs(t, err, ErrLocked)
	require.ErrorIs(t, s.Put(KeyAccessToken, []byte("x")), ErrLocked)
}

func TestStore_PutGetAcrossReopen(t *testing.T) {
	s, path := createTestStore(t)
	require.NoError(t, s.Unlock([]byte("correct horse")))
	require.NoError(t, s.Put(KeySharedSecret, []byte{1, 2, 3}))
	require.NoError(t, s.Put(KeyAccessToken, []byte("token")))
	require.NoError(t, s.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	require.ErrorIs(t, s.Unlock([]byte("wrong")), ErrWrongPassphrase)
	require.NoError(t, s.Unlock([]byte("correct horse")))

	secret, err := s.SharedSecret(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, secret)

	tok, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token", tok)
}

func TestStore_MissingValues(t *testing.T) {
	s, _ := createTestStore(t)
	defer s.Close()
	require.NoError(t, s.Unlock([]byte("pw")))

	_, err := s.Get("nope")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Token(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = s.SharedSecret(context.Background())
	require.ErrorIs(t, err, common.ErrNoSharedSecret)
}

func TestStore_Delete(t *testing.T) {
	s, _ := createTestStore(t)
	defer s.Close()
	require.NoError(t, s.Unlock([]byte("pw")))

	require.NoError(t, s.Put(KeyAccessToken, []byte("t")))
	require.NoError(t, s.Delete(KeyAccessToken))
	require.NoError(t, s.Delete(KeyAccessToken))

	_, err := s.Get(KeyAccessToken)
	require.ErrorIs(t, err, common.ErrorNotFound)
}
