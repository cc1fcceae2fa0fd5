package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	kamiwaza "github.com/kamiwaza-ai/kamiwaza-go"
)

func modelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "models",
		Usage: "model registry operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list registered models",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "files",
						Usage: "include each model's file inventory",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, _, err := newClient(cmd)
					if err != nil {
						return err
					}
					models, err := client.Models.List(ctx, cmd.Bool("files"))
					if err != nil {
						return err
					}

					w := newTabWriter()
					fmt.Fprintln(w, "ID\tNAME\tHUB\tFILES")
					for _, model := range models {
						fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", model.ID, model.Name, model.Hub, len(model.Files))
					}
					return w.Flush()
				},
			},
		},
	}
}

func servingCommand() *cli.Command {
	return &cli.Command{
		Name:  "serving",
		Usage: "model serving operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list deployments",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, _, err := newClient(cmd)
					if err != nil {
						return err
					}
					deployments, err := client.Serving.ListDeployments(ctx, nil)
					if err != nil {
						return err
					}

					w := newTabWriter()
					fmt.Fprintln(w, "ID\tMODEL\tSTATUS\tPORT")
					for _, d := range deployments {
						fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", d.ID, d.ModelName, d.Status, d.LBPort)
					}
					return w.Flush()
				},
			},
		},
	}
}

func datasetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "datasets",
		Usage: "data catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list catalog datasets",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "query",
						Usage: "search query",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, _, err := newClient(cmd)
					if err != nil {
						return err
					}
					datasets, err := client.Catalog.Datasets.List(ctx, cmd.String("query"))
					if err != nil {
						return err
					}

					w := newTabWriter()
					fmt.Fprintln(w, "URN\tPLATFORM\tNAME")
					for _, dataset := range datasets {
						fmt.Fprintf(w, "%s\t%s\t%s\n", dataset.URN, dataset.Platform, dataset.Name)
					}
					return w.Flush()
				},
			},
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "summarize platform state",
		Action: statusAction,
	}
}

func statusAction(ctx context.Context, cmd *cli.Command) error {
	client, cfg, err := newClient(cmd)
	if err != nil {
		return err
	}

	var (
		models      []kamiwaza.Model
		deployments []kamiwaza.Deployment
		health      map[string]any
	)

	// Prime the session before fanning out: the authenticator is not safe
	// for a concurrent first login.
	if _, err := client.Auth.VerifyToken(ctx); err != nil {
		return err
	}

	// Independent reads, fetched concurrently.
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		models, err = client.Models.List(gCtx, false)
		return err
	})
	g.Go(func() error {
		var err error
		deployments, err = client.Serving.ListDeployments(gCtx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		health, err = client.Serving.Health(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("platform:    %s\n", cfg.BaseURL)
	fmt.Printf("models:      %d\n", len(models))
	fmt.Printf("deployments: %d\n", len(deployments))
	if status, ok := health["status"]; ok {
		fmt.Printf("serving:     %v\n", status)
	}
	return nil
}

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}
