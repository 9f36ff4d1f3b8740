// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"codeberg.org/oliverandrich/teaching-award/internal/repository"
	"codeberg.org/oliverandrich/teaching-award/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "admin", "hash")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	got, err := repo.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	got, err = repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)
}

func TestCreateUser_Duplicate(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	_, err := repo.CreateUser(ctx, "admin", "hash")
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, "admin", "other")

	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestGetUser_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.GetUserByID(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetUserByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateUserPassword(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "admin", "correct-horse-battery")

	require.NoError(t, repo.UpdateUserPassword(ctx, user.ID, "newhash"))

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)

	assert.ErrorIs(t, repo.UpdateUserPassword(ctx, 999, "x"), repository.ErrNotFound)
}
