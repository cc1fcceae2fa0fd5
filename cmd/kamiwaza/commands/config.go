package commands

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"

	kamiwaza "github.com/kamiwaza-ai/kamiwaza-go"
)

// envPrefix is stripped from environment variables during config loading
// (e.g. KAMIWAZA_BASE_URL → base_url).
const envPrefix = "KAMIWAZA_"

// cliConfig holds CLI-only settings layered on top of the client config.
type cliConfig struct {
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

// loadConfig loads configuration from various sources with precedence:
// config file → environment variables → CLI flags → defaults.
func loadConfig(configPath string, cmd *cli.Command, environFunc func() []string) (*kamiwaza.Config, *cliConfig, error) {
	k := koanf.New(".")

	// 1. Load from config file if provided
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// 2. Load from environment variables
	envProvider := env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
		},
		EnvironFunc: environFunc,
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, nil, fmt.Errorf("loading environment variables: %w", err)
	}

	// Legacy aliases kept for compatibility with existing deployments.
	if !k.Exists("base_url") && k.Exists("base_uri") {
		_ = k.Set("base_url", k.String("base_uri"))
	}
	if !k.Exists("api_key") && k.Exists("api_token") {
		_ = k.Set("api_key", k.String("api_token"))
	}

	// 3. Load from CLI flags if provided
	if cmd != nil {
		if err := k.Load(confmap.Provider(extractAndTransformFlags(cmd), "."), nil); err != nil {
			return nil, nil, fmt.Errorf("loading CLI flags: %w", err)
		}
	}

	// The same flat key space feeds both structs; each picks out its own
	// fields.
	clientConfig := &kamiwaza.Config{}
	if err := k.UnmarshalWithConf("", clientConfig, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, nil, fmt.Errorf("unmarshaling client config: %w", err)
	}
	cliCfg := &cliConfig{}
	if err := k.UnmarshalWithConf("", cliCfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, nil, fmt.Errorf("unmarshaling CLI config: %w", err)
	}
	if cliCfg.LogLevel == "" {
		cliCfg.LogLevel = "info"
	}
	if cliCfg.LogFormat == "" {
		cliCfg.LogFormat = "text"
	}

	if err := clientConfig.ApplyDefaults(); err != nil {
		return nil, nil, fmt.Errorf("applying defaults: %w", err)
	}
	if err := clientConfig.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return clientConfig, cliCfg, nil
}

// extractAndTransformFlags transforms CLI flag names to match config keys,
// e.g. --base-url → base_url. Includes parent command flags.
func extractAndTransformFlags(cmd *cli.Command) map[string]any {
	values := make(map[string]any)

	// FlagNames() includes flags from parent commands (via lineage)
	for _, name := range cmd.FlagNames() {
		// Skip unset flags to preserve precedence from earlier config sources
		if !cmd.IsSet(name) {
			continue
		}

		if value := cmd.Value(name); value != nil {
			values[strings.ReplaceAll(name, "-", "_")] = value
		}
	}

	return values
}
