// Package cryptox holds the symmetric primitives of the client: the per-file
// key header and its shared-secret wrapping, content encryption, and the
// passphrase-derived key that seals local secrets.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"github.com/dmitrijs2005/drivemirror/internal/common"
)

const (
	KeySize   = 32
	NonceSize = 12

	keyHeaderInfo = "drive-key-header"
)

// RandomBytes returns n bytes from crypto/rand.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// Wipe overwrites b with zeros. A nil slice is ignored.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-GCM under a fresh random nonce.
func Seal(key, plaintext []byte) (ciphertext, nonce []byte, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce, err = RandomBytes(aesgcm.NonceSize())
	if err != nil {
		return nil, nil, err
	}

	return aesgcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Open reverses Seal.
func Open(key, ciphertext, nonce []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return aesgcm.Open(nil, nonce, ciphertext, nil)
}

// KeyHeader is the per-file content key together with the nonce used for
// the file's payloads.
type KeyHeader struct {
	Iv     []byte
	AesKey []byte
}

// NewKeyHeader returns a random key header.
func NewKeyHeader() (*KeyHeader, error) {
	iv, err := RandomBytes(NonceSize)
	if err != nil {
		return nil, err
	}
	key, err := RandomBytes(KeySize)
	if err != nil {
		return nil, err
	}
	return &KeyHeader{Iv: iv, AesKey: key}, nil
}

// Wipe zeroes the key material.
func (kh *KeyHeader) Wipe() {
	if kh == nil {
		return
	}
	Wipe(kh.Iv)
	Wipe(kh.AesKey)
}

// EncryptContent encrypts a payload of the file described by kh.
func (kh *KeyHeader) EncryptContent(plaintext []byte) ([]byte, error) {
	aesgcm, err := newGCM(kh.AesKey)
	if err != nil {
		return nil, err
	}
	return aesgcm.Seal(nil, kh.Iv, plaintext, nil), nil
}

// DecryptContent decrypts a payload of the file described by kh.
func (kh *KeyHeader) DecryptContent(ciphertext []byte) ([]byte, error) {
	aesgcm, err := newGCM(kh.AesKey)
	if err != nil {
		return nil, err
	}
	return aesgcm.Open(nil, kh.Iv, ciphertext, nil)
}

// EncryptedKeyHeader is a KeyHeader sealed with the shared secret. Byte
// fields travel as standard base64 in JSON.
type EncryptedKeyHeader struct {
	EncryptionVersion int    `json:"encryptionVersion"`
	Type              string `json:"type"`
	Iv                []byte `json:"iv"`
	EncryptedAesKey   []byte `json:"encryptedAesKey"`
}

// IsEmpty reports whether the header carries no key material.
func (e *EncryptedKeyHeader) IsEmpty() bool {
	return e == nil || len(e.EncryptedAesKey) == 0
}

func wrapKey(sharedSecret, salt []byte) ([]byte, error) {
	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, sharedSecret, salt, []byte(keyHeaderInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// EncryptKeyHeader seals kh with a key derived from sharedSecret.
func EncryptKeyHeader(kh *KeyHeader, sharedSecret []byte) (*EncryptedKeyHeader, error) {
	iv, err := RandomBytes(NonceSize)
	if err != nil {
		return nil, err
	}

	key, err := wrapKey(sharedSecret, iv)
	if err != nil {
		return nil, err
	}
	defer Wipe(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plain := make([]byte, 0, NonceSize+KeySize)
	plain = append(plain, kh.Iv...)
	plain = append(plain, kh.AesKey...)
	defer Wipe(plain)

	return &EncryptedKeyHeader{
		EncryptionVersion: 1,
		Type:              "aes",
		Iv:                iv,
		EncryptedAesKey:   aesgcm.Seal(nil, iv, plain, nil),
	}, nil
}

// DecryptKeyHeader unwraps e with sharedSecret. Every failure matches
// common.ErrInvalidKeyHeader.
func DecryptKeyHeader(e *EncryptedKeyHeader, sharedSecret []byte) (*KeyHeader, error) {
	if e.IsEmpty() || len(e.Iv) != NonceSize {
		return nil, common.ErrInvalidKeyHeader
	}

	key, err := wrapKey(sharedSecret, e.Iv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidKeyHeader, err)
	}
	defer Wipe(key)

	plain, err := Open(key, e.EncryptedAesKey, e.Iv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidKeyHeader, err)
	}
	if len(plain) != NonceSize+KeySize {
		Wipe(plain)
		return nil, fmt.Errorf("%w: unexpected length %d", common.ErrInvalidKeyHeader, len(plain))
	}

	kh := &KeyHeader{
		Iv:     append([]byte(nil), plain[:NonceSize]...),
		AesKey: append([]byte(nil), plain[NonceSize:]...),
	}
	Wipe(plain)
	return kh, nil
}
