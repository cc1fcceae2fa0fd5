package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	kamiwaza "github.com/kamiwaza-ai/kamiwaza-go"
	"github.com/kamiwaza-ai/kamiwaza-go/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	cmd := &cli.Command{
		Name:  "kamiwaza",
		Usage: "Kamiwaza platform CLI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "platform API base URL",
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "static API key",
			},
			&cli.StringFlag{
				Name:  "username",
				Usage: "username for session login",
			},
		},
		Commands: []*cli.Command{
			loginCommand(),
			modelsCommand(),
			servingCommand(),
			datasetsCommand(),
			statusCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

// newClient loads configuration and constructs an API client.
func newClient(cmd *cli.Command) (*kamiwaza.Client, *kamiwaza.Config, error) {
	clientConfig, cliCfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := observability.ParseLevel(cliCfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if err := observability.Instrument(level, cliCfg.LogFormat); err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	client, err := kamiwaza.NewClientFromConfig(clientConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, clientConfig, nil
}
