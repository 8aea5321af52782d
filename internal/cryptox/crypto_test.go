package cryptox

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/drivemirror/internal/common"
)

func TestDeriveMasterKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveMasterKey(password, salt)
	key2 := DeriveMasterKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}

	expectedHex := "34f7a1c64df63ab1ad5b5ee06e64db5713b35f81839823304db63e8e5e6a6a39"
	if hex.EncodeToString(key1) != expectedHex {
		t.Errorf("expected %s, got %s", expectedHex, hex.EncodeToString(key1))
	}
}

func TestDeriveMasterKey_DifferentInputs(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveMasterKey(password, []byte("salt-1"))
	key2 := DeriveMasterKey(password, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestSealOpen(t *testing.T) {
	key, err := RandomBytes(KeySize)
	require.NoError(t, err)

	ct, nonce, err := Seal(key, []byte("payload"))
	require.NoError(t, err)
	require.Len(t, nonce, NonceSize)

	pt, err := Open(key, ct, nonce)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), pt)

	ct[0] ^= 0xff
	_, err = Open(key, ct, nonce)
	require.Error(t, err)
}

func TestKeyHeader_RoundTrip(t *testing.T) {
	secret, err := RandomBytes(KeySize)
	require.NoError(t, err)

	kh, err := NewKeyHeader()
	require.NoError(t, err)

	ekh, err := EncryptKeyHeader(kh, secret)
	require.NoError(t, err)
	assert.False(t, ekh.IsEmpty())

	got, err := DecryptKeyHeader(ekh, secret)
	require.NoError(t, err)
	assert.Equal(t, kh.Iv, got.Iv)
	assert.Equal(t, kh.AesKey, got.AesKey)

	ct, err := kh.EncryptContent([]byte(`{"title":"notes"}`))
	require.NoError(t, err)
	pt, err := got.DecryptContent(ct)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"notes"}`, string(pt))
}

func TestDecryptKeyHeader_WrongSecret(t *testing.T) {
	kh, err := NewKeyHeader()
	require.NoError(t, err)

	ekh, err := EncryptKeyHeader(kh, []byte("right-secret"))
	require.NoError(t, err)

	_, err = DecryptKeyHeader(ekh, []byte("wrong-secret"))
	require.ErrorIs(t, err, common.ErrInvalidKeyHeader)
}

func TestDecryptKeyHeader_Malformed(t *testing.T) {
	tests := []struct {
		name string
		ekh  *EncryptedKeyHeader
	}{
		{"nil", nil},
		{"empty key", &EncryptedKeyHeader{Iv: make([]byte, NonceSize)}},
		{"short iv", &EncryptedKeyHeader{Iv: []byte{1, 2}, EncryptedAesKey: []byte{1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecryptKeyHeader(tt.ekh, []byte("secret"))
			require.ErrorIs(t, err, common.ErrInvalidKeyHeader)
		})
	}
}

func TestWipe(t *testing.T) {
	b := []byte{1, 2, 3}
	Wipe(b)
	assert.Equal(t, []byte{0, 0, 0}, b)
	Wipe(nil)

	kh := &KeyHeader{Iv: []byte{1}, AesKey: []byte{2}}
	kh.Wipe()
	assert.Equal(t, []byte{0}, kh.Iv)
	assert.Equal(t, []byte{0}, kh.AesKey)

	var nilKH *KeyHeader
	nilKH.Wipe()
}

func TestMakeVerifier(t *testing.T) {
	v1 := MakeVerifier([]byte("k"))
	v2 := MakeVerifier([]byte("k"))
	assert.Len(t, v1, 32)
	assert.Equal(t, v1, v2)
}
