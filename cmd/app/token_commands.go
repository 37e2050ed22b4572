package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/tokenstore/cmd/app/commands"
	"github.com/allisson/tokenstore/internal/app"
	"github.com/allisson/tokenstore/internal/config"
)

func getTokenCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "purge-expired-tokens",
			Usage: "Delete expired tokens older than specified days",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "days",
					Aliases: []string{"d"},
					Value:   0,
					Usage:   "Delete expired tokens older than this many days (0 purges everything expired)",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Show how many tokens would be deleted without deleting",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenStore, err := container.TokenStore()
				if err != nil {
					return err
				}

				return commands.RunPurgeExpiredTokens(
					ctx,
					tokenStore,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("days")),
					cmd.Bool("dry-run"),
					cmd.String("output"),
				)
			},
		},
		{
			Name:  "revoke-token",
			Usage: "Invalidate a token by its identifier",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Token identifier as presented by the caller",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenStore, err := container.TokenStore()
				if err != nil {
					return err
				}

				return commands.RunRevokeToken(
					ctx,
					tokenStore,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("output"),
				)
			},
		},
		{
			Name:  "list-revoked-tokens",
			Usage: "Print the revocation list of revoked, unexpired tokens",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenStore, err := container.TokenStore()
				if err != nil {
					return err
				}

				return commands.RunListRevokedTokens(
					ctx,
					tokenStore,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("output"),
				)
			},
		},
	}
}
