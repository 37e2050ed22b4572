package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/tokenstore/cmd/app/commands"
	"github.com/allisson/tokenstore/internal/app"
	"github.com/allisson/tokenstore/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "worker",
			Usage: "Start the background purge worker and the operational HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunWorker(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
	}
}
