// Package adminclient drives the project API and the image bucket on behalf
// of the administrator.
package adminclient

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenFile is the fixed name under which the bearer token is cached.
const TokenFile = "adminToken"

// ErrNotLoggedIn is returned when no token is cached.
var ErrNotLoggedIn = errors.New("not logged in")

// TokenStore persists the bearer token between invocations.
type TokenStore struct {
	path string
}

// NewTokenStore keeps the token in dir/adminToken.
func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{path: filepath.Join(dir, TokenFile)}
}

// DefaultTokenStore keeps the token under the user config directory.
func DefaultTokenStore() (*TokenStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locate config dir: %w", err)
	}
	return NewTokenStore(filepath.Join(dir, "irkadmin")), nil
}

// Load returns the cached token or ErrNotLoggedIn.
func (s *TokenStore) Load() (string, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotLoggedIn
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// Save caches token, readable only by the current user.
func (s *TokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Clear removes the cached token. Clearing an absent token is not an error.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
