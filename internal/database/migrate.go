// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package database

import (
	"embed"

	"github.com/pressly/goose/v3"
	"github.com/vinovest/sqlx"
)

//go:embed migrations/*/*.sql
var embedMigrations embed.FS

// prepare points goose at the migration set matching the connection's driver.
func prepare(db *sqlx.DB) (string, error) {
	goose.SetBaseFS(embedMigrations)

	dialect, dir := "sqlite3", "migrations/sqlite"
	if db.DriverName() == DriverPostgres {
		dialect, dir = "postgres", "migrations/postgres"
	}

	if err := goose.SetDialect(dialect); err != nil {
		return "", err
	}
	return dir, nil
}

// RunMigrations runs all pending goose migrations.
func RunMigrations(db *sqlx.DB) error {
	dir, err := prepare(db)
	if err != nil {
		return err
	}
	return goose.Up(db.DB, dir)
}

// MigrateDown rolls back the last migration.
func MigrateDown(db *sqlx.DB) error {
	dir, err := prepare(db)
	if err != nil {
		return err
	}
	return goose.Down(db.DB, dir)
}

// MigrateReset rolls back all migrations.
func MigrateReset(db *sqlx.DB) error {
	dir, err := prepare(db)
	if err != nil {
		return err
	}
	return goose.Reset(db.DB, dir)
}

// Version returns the currently applied migration version.
func Version(db *sqlx.DB) (int64, error) {
	if _, err := prepare(db); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(db.DB)
}
