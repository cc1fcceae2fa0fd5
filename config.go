package kamiwaza

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"

	"github.com/kamiwaza-ai/kamiwaza-go/tokenstore"
)

// envPrefix is stripped from environment variables during config loading
// (e.g. KAMIWAZA_BASE_URL → base_url).
const envPrefix = "KAMIWAZA_"

// Config holds client construction settings. The zero value is not usable;
// load one with FromEnv or populate it explicitly, then ApplyDefaults and
// Validate.
type Config struct {
	// BaseURL is the platform API root, typically ending in "/api".
	BaseURL string `json:"base_url" validate:"required,url"`

	// APIKey authenticates with a static key. Takes precedence over
	// username/password when both are set.
	APIKey string `json:"api_key,omitempty"`

	// Username and Password authenticate with a login session.
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	// VerifySSL controls TLS certificate verification. Defaults to true.
	VerifySSL *bool `json:"verify_ssl,omitempty"`

	// TokenCache is the on-disk location for cached session tokens. Empty
	// selects the per-user default; "-" disables persistence.
	TokenCache string `json:"token_cache,omitempty"`
}

// FromEnv builds a Config from KAMIWAZA_* environment variables. Recognized
// variables: KAMIWAZA_BASE_URL (alias KAMIWAZA_BASE_URI), KAMIWAZA_API_KEY
// (alias KAMIWAZA_API_TOKEN), KAMIWAZA_USERNAME, KAMIWAZA_PASSWORD,
// KAMIWAZA_VERIFY_SSL and KAMIWAZA_TOKEN_CACHE.
func FromEnv(environFunc func() []string) (*Config, error) {
	k := koanf.New(".")

	envProvider := env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
		},
		EnvironFunc: environFunc,
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	// Legacy aliases kept for compatibility with existing deployments.
	if !k.Exists("base_url") && k.Exists("base_uri") {
		_ = k.Set("base_url", k.String("base_uri"))
	}
	if !k.Exists("api_key") && k.Exists("api_token") {
		_ = k.Set("api_key", k.String("api_token"))
	}

	config := &Config{}
	if err := k.UnmarshalWithConf("", config, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}
	return config, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.VerifySSL == nil {
		verify := true
		c.VerifySSL = &verify
	}
	if c.TokenCache == "" && c.Username != "" {
		path, err := tokenstore.DefaultPath()
		if err != nil {
			return fmt.Errorf("token_cache required (auto-detect failed: %w)", err)
		}
		c.TokenCache = path
	}
	return nil
}

// Validate validates the configuration using struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// NewClientFromConfig builds a fully wired client from a Config.
func NewClientFromConfig(cfg *Config, extra ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	opts := []ClientOption{}
	if cfg.VerifySSL != nil && !*cfg.VerifySSL {
		opts = append(opts, WithInsecureTLS())
	}

	switch {
	case cfg.APIKey != "":
		opts = append(opts, WithAPIKey(cfg.APIKey))
	case cfg.Username != "":
		authOpts := []UserPasswordOption{}
		if cfg.TokenCache != "" && cfg.TokenCache != "-" {
			store, err := tokenstore.NewFileStore(cfg.TokenCache)
			if err != nil {
				return nil, fmt.Errorf("creating token store: %w", err)
			}
			authOpts = append(authOpts, WithTokenStore(store))
		}
		opts = append(opts, WithPasswordCredentials(cfg.Username, cfg.Password, authOpts...))
	}

	opts = append(opts, extra...)
	return NewClient(cfg.BaseURL, opts...)
}
