package auth

import (
	"os"
	"time"
)

// Environment variables read by EnvironmentStore
const (
	EnvAccessToken = "IGFEED_ACCESS_TOKEN"
	EnvUserID      = "IGFEED_USER_ID"
)

// EnvironmentStore implements TokenStore over environment variables.
// It is read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based token store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Name() string { return "environment" }

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(cred *Credential) error {
	return ErrStoreUnavailable
}

// Retrieve returns the token from the environment. When IGFEED_USER_ID is
// set it must match userID unless userID is the default key.
func (e *EnvironmentStore) Retrieve(userID string) (*Credential, error) {
	token := os.Getenv(EnvAccessToken)
	if token == "" {
		return nil, ErrCredentialsNotFound
	}

	envUser := os.Getenv(EnvUserID)
	if envUser != "" && userID != "" && userID != DefaultUserID && userID != envUser {
		return nil, ErrCredentialsNotFound
	}
	if userID == "" {
		userID = DefaultUserID
	}

	return &Credential{
		UserID:       userID,
		AccessToken:  token,
		LastModified: time.Now(),
	}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(userID string) error {
	return ErrStoreUnavailable
}

// Exists checks if an environment token is set for userID
func (e *EnvironmentStore) Exists(userID string) bool {
	_, err := e.Retrieve(userID)
	return err == nil
}
