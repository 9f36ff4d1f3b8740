// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(context.Background(), append([]string{"award"}, args...))
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "award.db")

	out, err := run(t, "migrate", "status", "--database-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 0")

	out, err = run(t, "migrate", "up", "--database-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 2")

	out, err = run(t, "migrate", "reset", "--database-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 0")
}

func TestAdminCreateAndSetPassword(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "award.db")

	out, err := run(t, "admin", "create", "--username", "jury", "--password", "correct horse battery staple", "--database-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, `created administrator "jury"`)

	_, err = run(t, "admin", "create", "--username", "jury", "--password", "correct horse battery staple", "--database-dsn", dsn)
	require.Error(t, err)

	out, err = run(t, "admin", "set-password", "--username", "jury", "--password", "another long passphrase", "--database-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, `password updated for "jury"`)
}

func TestAdminCreate_WeakPassword(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "award.db")

	_, err := run(t, "admin", "create", "--username", "jury", "--password", "short", "--database-dsn", dsn)

	assert.Error(t, err)
}

func TestPurgeTokens(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "award.db")

	out, err := run(t, "purge-tokens", "--purge-grace", "24h", "--database-dsn", dsn)

	require.NoError(t, err)
	assert.Contains(t, out, "purged 0 expired verification(s)")
}
