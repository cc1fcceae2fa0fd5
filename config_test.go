package kamiwaza

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnviron(vars ...string) func() []string {
	return func() []string { return vars }
}

func TestFromEnv(t *testing.T) {
	cfg, err := FromEnv(fakeEnviron(
		"KAMIWAZA_BASE_URL=https://platform.local/api",
		"KAMIWAZA_API_KEY=secret",
		"KAMIWAZA_VERIFY_SSL=false",
	))
	require.NoError(t, err)

	assert.Equal(t, "https://platform.local/api", cfg.BaseURL)
	assert.Equal(t, "secret", cfg.APIKey)
	require.NotNil(t, cfg.VerifySSL)
	assert.False(t, *cfg.VerifySSL)
}

func TestFromEnvLegacyAliases(t *testing.T) {
	cfg, err := FromEnv(fakeEnviron(
		"KAMIWAZA_BASE_URI=https://platform.local/api",
		"KAMIWAZA_API_TOKEN=secret",
	))
	require.NoError(t, err)

	assert.Equal(t, "https://platform.local/api", cfg.BaseURL)
	assert.Equal(t, "secret", cfg.APIKey)
}

func TestFromEnvAliasesDoNotOverride(t *testing.T) {
	cfg, err := FromEnv(fakeEnviron(
		"KAMIWAZA_BASE_URL=https://primary.local/api",
		"KAMIWAZA_BASE_URI=https://legacy.local/api",
	))
	require.NoError(t, err)

	assert.Equal(t, "https://primary.local/api", cfg.BaseURL)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{BaseURL: "https://platform.local/api/"}
	require.NoError(t, cfg.ApplyDefaults())

	assert.Equal(t, "https://platform.local/api", cfg.BaseURL)
	require.NotNil(t, cfg.VerifySSL)
	assert.True(t, *cfg.VerifySSL)
	assert.Empty(t, cfg.TokenCache)
}

func TestApplyDefaultsSelectsTokenCacheForSessions(t *testing.T) {
	cfg := &Config{BaseURL: "https://platform.local/api", Username: "admin"}
	require.NoError(t, cfg.ApplyDefaults())
	assert.NotEmpty(t, cfg.TokenCache)
}

func TestValidateRejectsMissingBaseURL(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMalformedBaseURL(t *testing.T) {
	cfg := &Config{BaseURL: "not a url"}
	assert.Error(t, cfg.Validate())
}

func TestNewClientFromConfigAPIKey(t *testing.T) {
	client, err := NewClientFromConfig(&Config{
		BaseURL: "https://platform.local/api",
		APIKey:  "secret",
	})
	require.NoError(t, err)

	_, ok := client.auth.(*APIKeyAuthenticator)
	assert.True(t, ok)
}

func TestNewClientFromConfigPasswordSession(t *testing.T) {
	client, err := NewClientFromConfig(&Config{
		BaseURL:    "https://platform.local/api",
		Username:   "admin",
		Password:   "secret",
		TokenCache: "-",
	})
	require.NoError(t, err)

	_, ok := client.auth.(*UserPasswordAuthenticator)
	assert.True(t, ok)
}

func TestNewClientFromConfigAnonymous(t *testing.T) {
	client, err := NewClientFromConfig(&Config{BaseURL: "https://platform.local/api"})
	require.NoError(t, err)
	assert.Nil(t, client.auth)
}
