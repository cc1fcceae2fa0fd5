package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore keeps the token in OS-native secure credential storage.
// Uses macOS Keychain, Windows Credential Manager, or Linux Secret Service.
// The token is stored as a single JSON blob under a service/user pair.
type KeyringStore struct {
	service string
	user    string
}

// Compile-time check to ensure KeyringStore implements TokenStore
var _ TokenStore = (*KeyringStore)(nil)

// NewKeyringStore creates a KeyringStore using the given service and user
// identifiers.
func NewKeyringStore(service, user string) (*KeyringStore, error) {
	if service == "" {
		return nil, fmt.Errorf("service cannot be empty")
	}
	if user == "" {
		return nil, fmt.Errorf("user cannot be empty")
	}

	return &KeyringStore{
		service: service,
		user:    user,
	}, nil
}

// Load returns the stored token. A missing or malformed keyring entry yields
// (nil, nil).
func (k *KeyringStore) Load(ctx context.Context) (*StoredToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blob, err := keyring.Get(k.service, k.user)
	if err != nil {
		return nil, nil
	}

	var token StoredToken
	if err := json.Unmarshal([]byte(blob), &token); err != nil {
		return nil, nil
	}
	if token.AccessToken == "" {
		return nil, nil
	}
	return &token, nil
}

// Save persists the token to the system keyring, overwriting any existing
// entry.
func (k *KeyringStore) Save(ctx context.Context, token StoredToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	return keyring.Set(k.service, k.user, string(data))
}

// Clear removes the keyring entry. A missing entry is not an error.
func (k *KeyringStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := keyring.Delete(k.service, k.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
