// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"codeberg.org/oliverandrich/teaching-award/internal/repository"
	"codeberg.org/oliverandrich/teaching-award/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerification(t *testing.T, repo *repository.Repository, nominationID int64, hash string, expiresAt time.Time) *models.Verification {
	t.Helper()
	v := &models.Verification{
		NominationID: nominationID,
		TokenHash:    hash,
		CreatedAt:    expiresAt.Add(-48 * time.Hour),
		ExpiresAt:    expiresAt,
	}
	require.NoError(t, repo.CreateVerification(context.Background(), v))
	return v
}

func TestCreateVerification(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	l := testutil.NewTestLecturer(t, repo, "Anna", "Schmidt", models.FacultyFIN)
	n := testutil.NewTestNomination(t, repo, l.ID, "max@ovgu.de", false)
	expiresAt := time.Now().Add(48 * time.Hour)

	v := newVerification(t, repo, n.ID, "abc123hash", expiresAt)
	assert.NotZero(t, v.ID)

	got, err := repo.GetVerificationByTokenHash(ctx, "abc123hash")
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.NominationID)
	assert.WithinDuration(t, expiresAt, got.ExpiresAt, time.Millisecond)

	byNomination, err := testutil.VerificationOf(t, repo, n.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, byNomination.ID)
}

func TestCreateVerification_OnePerNomination(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	l := testutil.NewTestLecturer(t, repo, "Anna", "Schmidt", models.FacultyFIN)
	n := testutil.NewTestNomination(t, repo, l.ID, "max@ovgu.de", false)
	newVerification(t, repo, n.ID, "first", time.Now().Add(time.Hour))

	err := repo.CreateVerification(context.Background(), &models.Verification{
		NominationID: n.ID,
		TokenHash:    "second",
		CreatedAt:    time.Now(),
		ExpiresAt:    time.Now().Add(time.Hour),
	})

	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestGetVerificationByTokenHash_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetVerificationByTokenHash(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteVerification(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	l := testutil.NewTestLecturer(t, repo, "Anna", "Schmidt", models.FacultyFIN)
	n := testutil.NewTestNomination(t, repo, l.ID, "max@ovgu.de", false)
	v := newVerification(t, repo, n.ID, "abc123hash", time.Now().Add(time.Hour))

	deleted, err := repo.DeleteVerification(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = repo.DeleteVerification(ctx, v.ID)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestDeleteNominationVerification(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	l := testutil.NewTestLecturer(t, repo, "Anna", "Schmidt", models.FacultyFIN)
	n := testutil.NewTestNomination(t, repo, l.ID, "max@ovgu.de", false)
	newVerification(t, repo, n.ID, "abc123hash", time.Now().Add(time.Hour))

	require.NoError(t, repo.DeleteNominationVerification(ctx, n.ID))
	// deleting again is a no-op
	require.NoError(t, repo.DeleteNominationVerification(ctx, n.ID))

	_, err := testutil.VerificationOf(t, repo, n.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteVerificationsExpiredBefore(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := testutil.NewTestLecturer(t, repo, "Anna", "Schmidt", models.FacultyFIN)
	old := testutil.NewTestNomination(t, repo, l.ID, "old@ovgu.de", false)
	recent := testutil.NewTestNomination(t, repo, l.ID, "recent@ovgu.de", false)
	live := testutil.NewTestNomination(t, repo, l.ID, "live@ovgu.de", false)
	newVerification(t, repo, old.ID, "old", now.Add(-40*24*time.Hour))
	newVerification(t, repo, recent.ID, "recent", now.Add(-time.Hour))
	newVerification(t, repo, live.ID, "live", now.Add(time.Hour))

	deleted, err := repo.DeleteVerificationsExpiredBefore(ctx, now.Add(-30*24*time.Hour))

	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	remaining, err := repo.ListVerifications(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, "recent@ovgu.de", remaining[0].SubEmail)
	assert.Equal(t, "live@ovgu.de", remaining[1].SubEmail)
	assert.Equal(t, "Anna Schmidt", remaining[1].LecturerName())
}

func TestVerificationCascadesWithNomination(t *testing.T) {
	db, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	l := testutil.NewTestLecturer(t, repo, "Anna", "Schmidt", models.FacultyFIN)
	n := testutil.NewTestNomination(t, repo, l.ID, "max@ovgu.de", false)
	newVerification(t, repo, n.ID, "abc123hash", time.Now().Add(time.Hour))

	_, err := db.ExecContext(ctx, `DELETE FROM lecturers WHERE id = ?`, l.ID)
	require.NoError(t, err)

	_, err = repo.GetVerificationByTokenHash(ctx, "abc123hash")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
