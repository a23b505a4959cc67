package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"cakeshop/internal/app/api"
	"cakeshop/internal/app/notify"
	"cakeshop/internal/common/logger"
	"cakeshop/internal/config"
	"cakeshop/internal/connections/database"
)

func main() {
	lg := logger.New("bootstrap")
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := &cli.App{
		Name:  "cakeshop",
		Usage: "cake storefront API, outbox relay and mail notifier",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to YAML config",
				EnvVars: []string{"CAKESHOP_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API and the outbox relay",
				Action: func(c *cli.Context) error {
					cfg, err := load(c)
					if err != nil {
						return err
					}
					lg.Info("service_started", map[string]any{"service": "api", "addr": cfg.HTTP.Addr})
					return api.Run(c.Context, cfg)
				},
			},
			{
				Name:  "notifier",
				Usage: "consume email.q and send order mails",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "consumer tag (defaults to notifier-<hostname>)"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := load(c)
					if err != nil {
						return err
					}
					lg.Info("service_started", map[string]any{"service": "notifier"})
					return notify.Run(c.Context, cfg, c.String("name"))
				},
			},
			{
				Name:  "migrate",
				Usage: "apply or roll back schema migrations",
				Subcommands: []*cli.Command{
					{
						Name:   "up",
						Usage:  "apply all pending migrations",
						Action: func(c *cli.Context) error { return migrate(c, 0) },
					},
					{
						Name:  "down",
						Usage: "roll back migrations",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
						},
						Action: func(c *cli.Context) error {
							if c.Int("steps") <= 0 {
								return fmt.Errorf("steps must be positive")
							}
							return migrate(c, c.Int("steps"))
						},
					},
				},
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		lg.Error("fatal", err, nil)
		os.Exit(1)
	}
}

func load(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	return cfg, nil
}

// migrate applies every pending migration when steps is 0, otherwise rolls
// back steps migrations.
func migrate(c *cli.Context, steps int) error {
	cfg, err := load(c)
	if err != nil {
		return err
	}
	db, err := database.ConnectDB(c.Context, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if steps == 0 {
		return database.MigrateUp(db)
	}
	return database.MigrateDown(db, steps)
}
