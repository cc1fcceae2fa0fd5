package tokenstore

import (
	"context"
	"time"
)

// StoredToken is a cached session credential: the bearer token itself, an
// optional refresh token and the absolute expiry in epoch seconds.
type StoredToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at"`
}

// IsExpired reports whether the token's expiry has passed.
func (t StoredToken) IsExpired() bool {
	return t.ExpiresAtTime().Compare(time.Now()) <= 0
}

// ExpiresAtTime returns the expiry as a time.Time.
func (t StoredToken) ExpiresAtTime() time.Time {
	return time.Unix(t.ExpiresAt, 0)
}

// TokenStore reads and writes a single cached token to persistent storage.
//
// A missing, unreadable or unparseable token is "no cached credential", not
// an error: Load returns (nil, nil) in all of those cases. Save replaces the
// stored token wholesale and is atomic from a reader's perspective. Exactly
// one process is expected to own a given store at a time; concurrent
// multi-process access may race and is a documented limitation.
type TokenStore interface {
	// Load returns the stored token, or nil when no usable token exists.
	Load(ctx context.Context) (*StoredToken, error)

	// Save persists the token, overwriting any previous one.
	Save(ctx context.Context, token StoredToken) error

	// Clear removes the stored token. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
