// Package secrets keeps the session credentials (bearer token and shared
// secret) in a bbolt file, sealed with a key derived from the user's
// passphrase.
package secrets

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/dmitrijs2005/drivemirror/internal/common"
	"github.com/dmitrijs2005/drivemirror/internal/cryptox"
)

const (
	KeyAccessToken  = "access_token"
	KeySharedSecret = "shared_secret"

	saltSize = 16
)

var (
	bucketMeta    = []byte("meta")
	bucketSecrets = []byte("secrets")

	metaSalt     = []byte("salt")
	metaVerifier = []byte("verifier")
)

var (
	ErrLocked          = errors.New("secret store is locked")
	ErrWrongPassphrase = errors.New("wrong passphrase")
)

type sealed struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

type Store struct {
	db *bbolt.DB

	mu  sync.RWMutex
	key []byte
}

// Open opens or creates the secret file at path. The store starts locked.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open secrets db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketMeta, bucketSecrets} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close wipes the unlocked key and closes the file.
func (s *Store) Close() error {
	s.mu.Lock()
	cryptox.Wipe(s.key)
	s.key = nil
	s.mu.Unlock()
	return s.db.Close()
}

// Unlock derives the master key from passphrase. The first unlock of a new
// file fixes the passphrase.
func (s *Store) Unlock(passphrase []byte) error {
	var salt, verifier []byte

	err := s.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if v := meta.Get(metaSalt); v != nil {
			salt = append([]byte(nil), v...)
			verifier = append([]byte(nil), meta.Get(metaVerifier)...)
			return nil
		}

		var err error
		if salt, err = cryptox.RandomBytes(saltSize); err != nil {
			return err
		}
		key := cryptox.DeriveMasterKey(passphrase, salt)
		verifier = cryptox.MakeVerifier(key)
		cryptox.Wipe(key)

		if err := meta.Put(metaSalt, salt); err != nil {
			return err
		}
		return meta.Put(metaVerifier, verifier)
	})
	if err != nil {
		return fmt.Errorf("failed to read secrets meta: %w", err)
	}

	key := cryptox.DeriveMasterKey(passphrase, salt)
	if subtle.ConstantTimeCompare(cryptox.MakeVerifier(key), verifier) != 1 {
		cryptox.Wipe(key)
		return ErrWrongPassphrase
	}

	s.mu.Lock()
	cryptox.Wipe(s.key)
	s.key = key
	s.mu.Unlock()
	return nil
}

func (s *Store) masterKey() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return nil, ErrLocked
	}
	return s.key, nil
}

func (s *Store) Put(name string, value []byte) error {
	key, err := s.masterKey()
	if err != nil {
		return err
	}

	ct, nonce, err := cryptox.Seal(key, value)
	if err != nil {
		return fmt.Errorf("failed to seal %s: %w", name, err)
	}
	data, err := json.Marshal(sealed{Nonce: nonce, Ciphertext: ct})
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketSecrets).Put([]byte(name), data); err != nil {
			return fmt.Errorf("failed to save %s: %w", name, err)
		}
		return nil
	})
}

// Get returns the plaintext of name or common.ErrorNotFound.
func (s *Store) Get(name string) ([]byte, error) {
	key, err := s.masterKey()
	if err != nil {
		return nil, err
	}

	var item sealed
	err = s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSecrets).Get([]byte(name))
		if data == nil {
			return common.ErrorNotFound
		}
		return json.Unmarshal(data, &item)
	})
	if err != nil {
		return nil, err
	}

	plain, err := cryptox.Open(key, item.Ciphertext, item.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return plain, nil
}

func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSecrets).Delete([]byte(name))
	})
}

// Token returns the saved bearer token.
func (s *Store) Token(context.Context) (string, error) {
	b, err := s.Get(KeyAccessToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrUnauthorized
		}
		return "", err
	}
	return string(b), nil
}

// SharedSecret returns the saved shared secret.
func (s *Store) SharedSecret(context.Context) ([]byte, error) {
	b, err := s.Get(KeySharedSecret)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrNoSharedSecret
	}
	return b, err
}
