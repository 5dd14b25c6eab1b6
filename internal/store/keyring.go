package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const keyringService = "teamspace"

// KeyringStore implements Backend on top of the OS keyring. It is meant
// for small, sensitive blobs such as the signed-in session.
type KeyringStore struct {
	ring keyring.Keyring
}

// OpenKeyringStore opens the system keyring, falling back to an encrypted
// file under ~/.config/teamspace/credentials.
func OpenKeyringStore() (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringService,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/teamspace/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("teamspace-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewKeyringStore(ring), nil
}

// NewKeyringStore wraps an already opened keyring.
func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// Load retrieves the blob stored under key.
func (s *KeyringStore) Load(_ context.Context, key string) ([]byte, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("getting credential %q: %w", key, err)
	}
	return item.Data, nil
}

// Save stores the blob under key.
func (s *KeyringStore) Save(_ context.Context, key string, data []byte) error {
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  data,
		Label: keyringService + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes the blob under key.
func (s *KeyringStore) Delete(_ context.Context, key string) error {
	err := s.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// Close is a no-op; keyrings hold no open handles.
func (s *KeyringStore) Close() error {
	return nil
}
