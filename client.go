package kamiwaza

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kamiwaza-ai/kamiwaza-go/internal/recent"
)

// Client talks to a Kamiwaza platform deployment. Service wrappers hang off
// it as fields and share its request executor, credentials and error
// translation.
//
// A Client is not safe for concurrent use of a single password-credential
// session: the refresh-then-retry sequence mutates authenticator state
// without locking. Serialize calls or construct one client per goroutine.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	auth       Authenticator
	recent     *recent.Tracker
	sleep      func(time.Duration)

	passwordOpts []UserPasswordOption
	username     string
	password     string

	Auth      *AuthService
	Catalog   *CatalogService
	Models    *ModelService
	Serving   *ServingService
	VectorDB  *VectorDBService
	Retrieval *RetrievalService
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client (for timeouts, proxies,
// custom transports).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithAuthenticator sets a fully constructed authenticator.
func WithAuthenticator(auth Authenticator) ClientOption {
	return func(c *Client) { c.auth = auth }
}

// WithAPIKey authenticates every request with a static API key.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.auth = NewAPIKeyAuthenticator(key) }
}

// WithPasswordCredentials authenticates with a username/password session,
// logging in lazily on the first request. Options configure the session
// authenticator, e.g. WithTokenStore for persistence across processes.
func WithPasswordCredentials(username, password string, opts ...UserPasswordOption) ClientOption {
	return func(c *Client) {
		c.username = username
		c.password = password
		c.passwordOpts = opts
	}
}

// WithInsecureTLS disables TLS certificate verification. For development
// deployments with self-signed certificates only.
func WithInsecureTLS() ClientOption {
	return func(c *Client) {
		c.httpClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}
}

// NewClient creates a Client for the platform API at baseURL (typically
// ending in "/api"). Without a credential option, requests are sent
// unauthenticated.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
		recent:     recent.New(),
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Services are constructed eagerly so credential wiring below can use
	// them; they are stateless beyond the client reference.
	c.Auth = &AuthService{client: c}
	c.Catalog = newCatalogService(c)
	c.Models = &ModelService{client: c}
	c.Serving = &ServingService{client: c}
	c.VectorDB = &VectorDBService{client: c}
	c.Retrieval = &RetrievalService{client: c}

	// Password sessions authenticate through the client's own auth service,
	// which issues its calls with authentication skipped.
	if c.auth == nil && c.username != "" {
		c.auth = NewUserPasswordAuthenticator(c.username, c.password, c.Auth, c.passwordOpts...)
	}

	return c, nil
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// noteRecentChange records a resource key as freshly mutated, making
// follow-up schema writes against it eligible for the eventual-consistency
// retry window.
func (c *Client) noteRecentChange(key string) {
	c.recent.Touch(key)
}
