// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"codeberg.org/oliverandrich/teaching-award/internal/config"
	"codeberg.org/oliverandrich/teaching-award/internal/database"
	"codeberg.org/oliverandrich/teaching-award/internal/repository"
	"codeberg.org/oliverandrich/teaching-award/internal/server"
	"codeberg.org/oliverandrich/teaching-award/internal/services/auth"
	"codeberg.org/oliverandrich/teaching-award/internal/services/maintenance"
	"codeberg.org/oliverandrich/teaching-award/internal/services/verification"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "award",
		Usage:   "Teaching award nominations",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:   config.Flags(),
		Action:  server.Run,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the web application",
				Flags:  config.Flags(),
				Action: server.Run,
			},
			migrateCommand(),
			adminCommand(),
			purgeCommand(),
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply all pending migrations",
				Flags:  config.DatabaseFlags(),
				Action: withDB(database.Connect, func(_ context.Context, cmd *cli.Command, db *sqlx.DB) error {
					if err := database.RunMigrations(db); err != nil {
						return err
					}
					return printVersion(cmd, db)
				}),
			},
			{
				Name:   "down",
				Usage:  "Roll back the most recent migration",
				Flags:  config.DatabaseFlags(),
				Action: withDB(database.Connect, func(_ context.Context, cmd *cli.Command, db *sqlx.DB) error {
					if err := database.MigrateDown(db); err != nil {
						return err
					}
					return printVersion(cmd, db)
				}),
			},
			{
				Name:   "reset",
				Usage:  "Roll back all migrations",
				Flags:  config.DatabaseFlags(),
				Action: withDB(database.Connect, func(_ context.Context, cmd *cli.Command, db *sqlx.DB) error {
					if err := database.MigrateReset(db); err != nil {
						return err
					}
					return printVersion(cmd, db)
				}),
			},
			{
				Name:   "status",
				Usage:  "Print the applied schema version",
				Flags:  config.DatabaseFlags(),
				Action: withDB(database.Connect, func(_ context.Context, cmd *cli.Command, db *sqlx.DB) error {
					return printVersion(cmd, db)
				}),
			},
		},
	}
}

func adminCommand() *cli.Command {
	credentials := func() []cli.Flag {
		return append([]cli.Flag{
			&cli.StringFlag{Name: "username", Usage: "Administrator login", Required: true},
			&cli.StringFlag{
				Name:     "password",
				Usage:    "Administrator password (" + strings.Join(auth.DefaultPasswordPolicy().Requirements(), ", ") + ")",
				Required: true,
			},
		}, config.DatabaseFlags()...)
	}

	return &cli.Command{
		Name:  "admin",
		Usage: "Manage administrator accounts",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an administrator",
				Flags: credentials(),
				Action: withDB(database.Open, func(ctx context.Context, cmd *cli.Command, db *sqlx.DB) error {
					svc := auth.NewService(repository.New(db))
					user, err := svc.CreateAdmin(ctx, cmd.String("username"), cmd.String("password"))
					if err != nil {
						return err
					}
					_, err = fmt.Fprintf(cmd.Root().Writer, "created administrator %q (id %d)\n", user.Username, user.ID)
					return err
				}),
			},
			{
				Name:  "set-password",
				Usage: "Replace an administrator's password",
				Flags: credentials(),
				Action: withDB(database.Open, func(ctx context.Context, cmd *cli.Command, db *sqlx.DB) error {
					svc := auth.NewService(repository.New(db))
					if err := svc.SetPassword(ctx, cmd.String("username"), cmd.String("password")); err != nil {
						return err
					}
					_, err := fmt.Fprintf(cmd.Root().Writer, "password updated for %q\n", cmd.String("username"))
					return err
				}),
			},
		},
	}
}

func purgeCommand() *cli.Command {
	return &cli.Command{
		Name:  "purge-tokens",
		Usage: "Delete verification tokens that expired before the grace period",
		Flags: append([]cli.Flag{
			&cli.DurationFlag{
				Name:  "purge-grace",
				Value: 30 * 24 * time.Hour,
				Usage: "How long expired tokens are kept before purging",
			},
		}, config.DatabaseFlags()...),
		Action: withDB(database.Open, func(ctx context.Context, cmd *cli.Command, db *sqlx.DB) error {
			engine := verification.NewEngine(repository.New(db), nil)
			cleaner := maintenance.NewCleaner(engine, maintenance.WithGrace(cmd.Duration("purge-grace")))

			n, err := cleaner.RunOnce(ctx)
			if err != nil {
				return fmt.Errorf("purge failed: %w", err)
			}
			_, err = fmt.Fprintf(cmd.Root().Writer, "purged %d expired verification(s)\n", n)
			return err
		}),
	}
}

type dbAction func(ctx context.Context, cmd *cli.Command, db *sqlx.DB) error

// withDB configures logging, opens the database with open and closes it
// after the action ran.
func withDB(open func(string) (*sqlx.DB, error), action dbAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		server.SetupLogger(cmd.String("log-level"), cmd.String("log-format"))

		db, err := open(cmd.String("database-dsn"))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("failed to close database", "error", closeErr)
			}
		}()

		return action(ctx, cmd, db)
	}
}

func printVersion(cmd *cli.Command, db *sqlx.DB) error {
	version, err := database.Version(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	_, err = fmt.Fprintf(cmd.Root().Writer, "schema version %d\n", version)
	return err
}
