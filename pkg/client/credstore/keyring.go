package credstore

import (
	"github.com/99designs/keyring"
)

// KeyringStore persists credentials in the OS keychain or credential
// manager via the keyring library, falling back to an encrypted file
// backend where no native store exists.
type KeyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore opens the OS keyring under the given service name.
func NewKeyringStore(serviceName string) (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
	})
	if err != nil {
		return nil, err
	}
	return &KeyringStore{ring: ring}, nil
}

func (s *KeyringStore) Set(key, value string) error {
	return s.ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
}

func (s *KeyringStore) Get(key string) (string, bool) {
	item, err := s.ring.Get(key)
	if err != nil {
		return "", false
	}
	return string(item.Data), true
}

func (s *KeyringStore) Delete(key string) error {
	err := s.ring.Remove(key)
	if err == keyring.ErrKeyNotFound {
		return nil
	}
	return err
}
