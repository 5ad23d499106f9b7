package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	keyringService  = "bskybot"
	keyringPrefix   = "bluesky_"
	keyringIndexKey = "_accounts"
)

// KeyringStore implements CredentialStore using the system keychain. The
// keychain cannot be enumerated portably, so the store keeps its own index of
// identifiers under a reserved key.
type KeyringStore struct {
	mu sync.Mutex
}

// NewKeyringStore creates a keyring store after checking the keychain is usable
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("%w: keyring: %v", ErrStoreUnavailable, err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves credentials to the system keychain
func (k *KeyringStore) Store(account *Account) error {
	if account == nil || account.Identifier == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if err := keyring.Set(keyringService, keyringPrefix+account.Identifier, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	index := k.readIndex()
	for _, id := range index {
		if id == account.Identifier {
			return nil
		}
	}
	return k.writeIndex(append(index, account.Identifier))
}

// Retrieve gets credentials from the system keychain
func (k *KeyringStore) Retrieve(identifier string) (*Account, error) {
	if identifier == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(keyringService, keyringPrefix+identifier)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var account Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}

// List returns every indexed account still present in the keychain
func (k *KeyringStore) List() ([]*Account, error) {
	k.mu.Lock()
	index := k.readIndex()
	k.mu.Unlock()

	accounts := make([]*Account, 0, len(index))
	for _, id := range index {
		account, err := k.Retrieve(id)
		if err != nil {
			continue
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

// Delete removes credentials from the system keychain
func (k *KeyringStore) Delete(identifier string) error {
	if identifier == "" {
		return ErrInvalidCredentials
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	err := keyring.Delete(keyringService, keyringPrefix+identifier)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	index := k.readIndex()
	kept := index[:0]
	for _, id := range index {
		if id != identifier {
			kept = append(kept, id)
		}
	}
	return k.writeIndex(kept)
}

// Exists checks if credentials exist in the keychain
func (k *KeyringStore) Exists(identifier string) bool {
	if identifier == "" {
		return false
	}

	_, err := keyring.Get(keyringService, keyringPrefix+identifier)
	return err == nil
}

func (k *KeyringStore) readIndex() []string {
	data, err := keyring.Get(keyringService, keyringIndexKey)
	if err != nil {
		return nil
	}

	var index []string
	if err := json.Unmarshal([]byte(data), &index); err != nil {
		return nil
	}
	return index
}

func (k *KeyringStore) writeIndex(index []string) error {
	if len(index) == 0 {
		err := keyring.Delete(keyringService, keyringIndexKey)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to update keyring index: %w", err)
		}
		return nil
	}

	sort.Strings(index)
	data, err := json.Marshal(index)
	if err != nil {
		return err
	}
	if err := keyring.Set(keyringService, keyringIndexKey, string(data)); err != nil {
		return fmt.Errorf("failed to update keyring index: %w", err)
	}
	return nil
}
