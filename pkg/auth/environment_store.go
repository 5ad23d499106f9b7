package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore over environment variables.
// BSKYBOT_IDENTIFIER/BSKYBOT_PASSWORD take precedence over the bare
// IDENTIFIER/PASSWORD pair.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment account. A non-empty identifier must match it.
func (e *EnvironmentStore) Retrieve(identifier string) (*Account, error) {
	envIdentifier, password := envCredentials()
	if envIdentifier == "" || password == "" {
		return nil, ErrCredentialsNotFound
	}
	if identifier != "" && identifier != envIdentifier {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Identifier:   envIdentifier,
		Password:     password,
		LastModified: time.Time{},
	}, nil
}

// List returns a single account if environment variables are set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(identifier string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(identifier string) bool {
	_, err := e.Retrieve(identifier)
	return err == nil
}

func envCredentials() (identifier, password string) {
	identifier = os.Getenv("BSKYBOT_IDENTIFIER")
	if identifier == "" {
		identifier = os.Getenv("IDENTIFIER")
	}
	password = os.Getenv("BSKYBOT_PASSWORD")
	if password == "" {
		password = os.Getenv("PASSWORD")
	}
	return identifier, password
}
