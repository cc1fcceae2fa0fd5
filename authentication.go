package kamiwaza

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/kamiwaza-ai/kamiwaza-go/tokenstore"
)

// expirySkew treats tokens expiring within the next few seconds as already
// expired, so a token does not go stale between the expiry check and the
// request hitting the server.
const expirySkew = 5 * time.Second

// TokenResponse is the payload returned by the platform's token endpoints.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// AuthAPI performs the login and refresh network calls. Implementations must
// issue these with authentication skipped, since they run while no valid
// credential exists. AuthService is the canonical implementation.
type AuthAPI interface {
	LoginWithPassword(ctx context.Context, username, password string) (*TokenResponse, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenResponse, error)
}

// Authenticator produces a valid bearer credential for outgoing requests.
//
// SupportsRefresh is an explicit capability flag: the request executor calls
// Refresh at most once per failing call, and only for variants that report
// refresh support.
type Authenticator interface {
	// Authenticate installs a bearer credential on req.
	Authenticate(ctx context.Context, req *http.Request) error

	// Refresh renews the credential after the server rejected it.
	Refresh(ctx context.Context) error

	// SupportsRefresh reports whether Refresh can produce a new credential.
	SupportsRefresh() bool
}

// APIKeyAuthenticator installs a fixed opaque key on every request. A static
// key has no expiry and cannot be refreshed; a 401 with this variant is
// surfaced immediately.
type APIKeyAuthenticator struct {
	key string
}

// Compile-time check to ensure APIKeyAuthenticator implements Authenticator
var _ Authenticator = (*APIKeyAuthenticator)(nil)

// NewAPIKeyAuthenticator creates an authenticator around a static API key.
func NewAPIKeyAuthenticator(key string) *APIKeyAuthenticator {
	return &APIKeyAuthenticator{key: key}
}

// Authenticate installs the key verbatim.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+a.key)
	return nil
}

// Refresh always fails: a static key cannot be renewed.
func (a *APIKeyAuthenticator) Refresh(ctx context.Context) error {
	return &AuthenticationError{Message: "API key credentials cannot be refreshed"}
}

// SupportsRefresh reports false.
func (a *APIKeyAuthenticator) SupportsRefresh() bool { return false }

// UserPasswordAuthenticator owns the login and refresh state machine for
// password credentials. It caches the session token in memory, optionally
// persists it through a TokenStore, and renews it via the AuthAPI
// collaborator when it expires.
//
// Not safe for concurrent use; serialize calls or give each goroutine its
// own client.
type UserPasswordAuthenticator struct {
	username string
	password string
	auth     AuthAPI
	store    tokenstore.TokenStore
	logger   *slog.Logger
	now      func() time.Time

	token        string
	refreshToken string
	tokenExpiry  time.Time
}

// Compile-time check to ensure UserPasswordAuthenticator implements Authenticator
var _ Authenticator = (*UserPasswordAuthenticator)(nil)

// UserPasswordOption configures a UserPasswordAuthenticator.
type UserPasswordOption func(*UserPasswordAuthenticator)

// WithTokenStore persists session tokens through store, and seeds the
// in-memory cache from it so a freshly constructed client reuses a still
// valid session without hitting the network.
func WithTokenStore(store tokenstore.TokenStore) UserPasswordOption {
	return func(a *UserPasswordAuthenticator) { a.store = store }
}

// WithAuthLogger sets the logger used for credential lifecycle events.
func WithAuthLogger(logger *slog.Logger) UserPasswordOption {
	return func(a *UserPasswordAuthenticator) { a.logger = logger }
}

// NewUserPasswordAuthenticator creates an authenticator for the given
// credentials. The auth collaborator performs the actual login and refresh
// calls.
func NewUserPasswordAuthenticator(username, password string, auth AuthAPI, opts ...UserPasswordOption) *UserPasswordAuthenticator {
	a := &UserPasswordAuthenticator{
		username: username,
		password: password,
		auth:     auth,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.seedFromStore()
	return a
}

// seedFromStore loads a previously persisted session token, if any. Load
// failures mean "no cached credential" and are ignored.
func (a *UserPasswordAuthenticator) seedFromStore() {
	if a.store == nil {
		return
	}
	stored, err := a.store.Load(context.Background())
	if err != nil || stored == nil {
		return
	}
	a.token = stored.AccessToken
	a.refreshToken = stored.RefreshToken
	a.tokenExpiry = stored.ExpiresAtTime()
}

// Authenticate ensures a valid session token and installs it on req. A
// cached, non-expired token is reused without network calls; an expired
// token with a refresh token triggers a refresh; anything else performs a
// full password login.
func (a *UserPasswordAuthenticator) Authenticate(ctx context.Context, req *http.Request) error {
	switch {
	case a.token != "" && !a.expired():
		// Cached token still valid.
	case a.token != "" && a.refreshToken != "":
		if err := a.Refresh(ctx); err != nil {
			return err
		}
	default:
		// No token, or an expired token with no way to refresh it.
		if err := a.login(ctx); err != nil {
			return err
		}
	}

	req.Header.Set("Authorization", "Bearer "+a.token)
	return nil
}

// Refresh exchanges the cached refresh token for a new session token. The
// executor invokes this at most once per failing call.
func (a *UserPasswordAuthenticator) Refresh(ctx context.Context) error {
	if a.refreshToken == "" {
		return &AuthenticationError{Message: "no refresh token available"}
	}

	a.logger.DebugContext(ctx, "refreshing session token", "username", a.username)
	response, err := a.auth.RefreshAccessToken(ctx, a.refreshToken)
	if err != nil {
		return &AuthenticationError{Message: "token refresh failed", Err: err}
	}

	a.apply(ctx, response)
	return nil
}

// SupportsRefresh reports true.
func (a *UserPasswordAuthenticator) SupportsRefresh() bool { return true }

// login performs a full password grant.
func (a *UserPasswordAuthenticator) login(ctx context.Context) error {
	a.logger.DebugContext(ctx, "logging in", "username", a.username)
	response, err := a.auth.LoginWithPassword(ctx, a.username, a.password)
	if err != nil {
		return &AuthenticationError{Message: "login failed", Err: err}
	}

	a.apply(ctx, response)
	return nil
}

// apply caches the new token in memory and persists it. A persistence
// failure is logged, not raised: the session itself is valid.
func (a *UserPasswordAuthenticator) apply(ctx context.Context, response *TokenResponse) {
	a.token = response.AccessToken
	if response.RefreshToken != "" {
		a.refreshToken = response.RefreshToken
	}
	a.tokenExpiry = a.now().Add(time.Duration(response.ExpiresIn) * time.Second)

	if a.store == nil {
		return
	}
	stored := tokenstore.StoredToken{
		AccessToken:  a.token,
		RefreshToken: a.refreshToken,
		ExpiresAt:    a.tokenExpiry.Unix(),
	}
	if err := a.store.Save(ctx, stored); err != nil {
		a.logger.WarnContext(ctx, "failed to persist session token", "error", err)
	}
}

// expired reports whether the cached token is past (or within expirySkew of)
// its expiry.
func (a *UserPasswordAuthenticator) expired() bool {
	return !a.now().Add(expirySkew).Before(a.tokenExpiry)
}
