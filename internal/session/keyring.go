package session

import (
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName = "taskadmin"
	sessionKey  = "session"
)

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/taskadmin/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("taskadmin-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Load reads the persisted session from the system keyring. Returns
// (nil, nil) when no session has been stored.
func Load() (*Session, error) {
	ring, err := openKeyring()
	if err != nil {
		return nil, err
	}

	item, err := ring.Get(sessionKey)
	if err != nil {
		if err == keyring.ErrKeyNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	return Decode(item.Data)
}

// Save persists the session to the system keyring.
func Save(s *Session) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	data, err := s.Encode()
	if err != nil {
		return err
	}

	if err := ring.Set(keyring.Item{Key: sessionKey, Data: data}); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Clear removes the persisted session from the system keyring.
func Clear() error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	if err := ring.Remove(sessionKey); err != nil && err != keyring.ErrKeyNotFound {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
