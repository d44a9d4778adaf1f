package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"
)

const service = "wheelx-cli"

// KeyringStore persists the session of one API environment in the OS
// keychain/credential manager.
type KeyringStore struct {
	env string
	now func() time.Time
}

type keyringEntry struct {
	Session
	ExpiresAt time.Time `json:"expires_at"`
}

// NewKeyringStore returns a store keyed by the environment (API host or alias).
func NewKeyringStore(env string) *KeyringStore {
	return &KeyringStore{env: env, now: time.Now}
}

// getKeyringKey returns a unique key for storing sessions per environment
func (k *KeyringStore) getKeyringKey() string {
	return fmt.Sprintf("session-%s", k.env)
}

// Read returns an empty session when nothing is stored or the stored session
// is older than MaxAge.
func (k *KeyringStore) Read() (Session, error) {
	raw, err := keyring.Get(service, k.getKeyringKey())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var entry keyringEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return Session{}, fmt.Errorf("failed to parse stored session: %w", err)
	}

	if !k.now().Before(entry.ExpiresAt) {
		if err := k.Clear(); err != nil {
			return Session{}, err
		}
		return Session{}, nil
	}

	return entry.Session, nil
}

func (k *KeyringStore) Write(s Session) error {
	data, err := json.Marshal(keyringEntry{
		Session:   s,
		ExpiresAt: k.now().Add(MaxAge),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := keyring.Set(service, k.getKeyringKey(), string(data)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (k *KeyringStore) Clear() error {
	if err := keyring.Delete(service, k.getKeyringKey()); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
