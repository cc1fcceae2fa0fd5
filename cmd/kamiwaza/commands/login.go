package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/kamiwaza-ai/kamiwaza-go/tokenstore"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "log in with username and password and cache the session token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "token-cache",
				Usage: "path for the cached session token",
			},
		},
		Action: loginAction,
	}
}

func loginAction(ctx context.Context, cmd *cli.Command) error {
	client, cfg, err := newClient(cmd)
	if err != nil {
		return err
	}

	username := cfg.Username
	if username == "" {
		return fmt.Errorf("username required (flag, config file or KAMIWAZA_USERNAME)")
	}

	password := cfg.Password
	if password == "" {
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	token, err := client.Auth.LoginWithPassword(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cachePath := cmd.String("token-cache")
	if cachePath == "" {
		cachePath = cfg.TokenCache
	}
	if cachePath == "" {
		cachePath, err = tokenstore.DefaultPath()
		if err != nil {
			return err
		}
	}
	store, err := tokenstore.NewFileStore(cachePath)
	if err != nil {
		return fmt.Errorf("creating token store: %w", err)
	}

	expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	stored := tokenstore.StoredToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    expiresAt.Unix(),
	}
	if err := store.Save(ctx, stored); err != nil {
		return fmt.Errorf("persisting session token: %w", err)
	}

	fmt.Printf("logged in as %s, session valid until %s\n", username, expiresAt.Format(time.RFC3339))
	return nil
}

// promptPassword reads a password from the terminal without echo.
func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(password), nil
}
