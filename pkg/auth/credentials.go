package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultUserID keys the token when no Instagram user id is configured
const DefaultUserID = "default"

// Credential is a Graph API access token bound to an Instagram user id
type Credential struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	LastModified time.Time `json:"last_modified"`
}

// TokenStore is the interface for storing and retrieving access tokens
type TokenStore interface {
	// Name identifies the backend in status output
	Name() string

	// Store saves the credential under its user id
	Store(cred *Credential) error

	// Retrieve gets the credential for a user id
	Retrieve(userID string) (*Credential, error)

	// Delete removes the credential for a user id
	Delete(userID string) error

	// Exists checks if a credential exists for a user id
	Exists(userID string) bool
}

// Manager handles token storage with fallback backends
type Manager struct {
	stores []TokenStore
}

// NewManager creates a manager over the system keyring, an encrypted file
// in the igfeed config directory, and the environment, in that order.
func NewManager() (*Manager, error) {
	var stores []TokenStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"), "")
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a Manager over explicit backends
func NewManagerWithStores(stores ...TokenStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the credential in the first backend that accepts it
func (m *Manager) Store(cred *Credential) error {
	if cred == nil || strings.TrimSpace(cred.AccessToken) == "" {
		return fmt.Errorf("access token is required: %w", ErrInvalidCredentials)
	}
	if cred.UserID == "" {
		cred.UserID = DefaultUserID
	}
	cred.LastModified = time.Now()

	var errList []error
	for _, store := range m.stores {
		err := store.Store(cred)
		if err == nil {
			return nil
		}
		errList = append(errList, fmt.Errorf("%s: %w", store.Name(), err))
	}

	if len(errList) == 0 {
		return ErrStoreUnavailable
	}
	return fmt.Errorf("failed to store credentials: %w", errors.Join(errList...))
}

// Retrieve gets the credential from the first backend that has it.
// An empty userID falls back to DefaultUserID.
func (m *Manager) Retrieve(userID string) (*Credential, error) {
	for _, id := range lookupIDs(userID) {
		for _, store := range m.stores {
			if cred, err := store.Retrieve(id); err == nil && cred != nil {
				return cred, nil
			}
		}
	}
	return nil, ErrCredentialsNotFound
}

// Token returns only the access token, or "" when none is stored
func (m *Manager) Token(userID string) string {
	cred, err := m.Retrieve(userID)
	if err != nil {
		return ""
	}
	return cred.AccessToken
}

// Locate returns the name of the backend holding the credential
func (m *Manager) Locate(userID string) (string, bool) {
	for _, id := range lookupIDs(userID) {
		for _, store := range m.stores {
			if store.Exists(id) {
				return store.Name(), true
			}
		}
	}
	return "", false
}

// Delete removes the credential from every backend
func (m *Manager) Delete(userID string) error {
	if userID == "" {
		userID = DefaultUserID
	}

	deleted := false
	for _, store := range m.stores {
		if err := store.Delete(userID); err == nil {
			deleted = true
		}
	}
	if !deleted {
		return ErrCredentialsNotFound
	}
	return nil
}

func lookupIDs(userID string) []string {
	if userID == "" || userID == DefaultUserID {
		return []string{DefaultUserID}
	}
	return []string{userID, DefaultUserID}
}

// getConfigDir returns the igfeed configuration directory, creating it
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "igfeed")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "igfeed")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "igfeed")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "igfeed")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// MaskToken hides all but the first 4 and last 4 characters of a token
func MaskToken(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
