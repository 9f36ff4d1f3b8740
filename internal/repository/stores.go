// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/teaching-award/internal/models"
)

// LecturerStore persists lecturers.
type LecturerStore interface {
	CreateLecturer(ctx context.Context, l *models.Lecturer) error
	GetLecturer(ctx context.Context, id int64) (*models.Lecturer, error)
	GetOrCreateLecturer(ctx context.Context, firstName, lastName string, faculty models.Faculty) (*models.Lecturer, error)
	SetLecturerFavorite(ctx context.Context, id int64, favorite bool) error
	SearchLecturers(ctx context.Context, q LecturerQuery) ([]models.LecturerSummary, error)
	ListLecturers(ctx context.Context, faculty models.Faculty) ([]models.LecturerSummary, error)
	GetLecturerSummary(ctx context.Context, id int64) (*models.LecturerSummary, error)
}

// NominationStore persists nominations.
type NominationStore interface {
	CreateNomination(ctx context.Context, n *models.Nomination) error
	GetNomination(ctx context.Context, id int64) (*models.Nomination, error)
	NominationExists(ctx context.Context, lecturerID int64, email string) (bool, error)
	MarkNominationVerified(ctx context.Context, id int64) error
	ListUnverifiedNominations(ctx context.Context, email string) ([]models.NominationDetail, error)
	ListNominations(ctx context.Context, verified *bool) ([]models.NominationDetail, error)
	GetStats(ctx context.Context) (*models.Stats, error)
	SetEmailDomains(ctx context.Context, domains []string) error
}

// VerificationStore persists hashed confirmation tokens.
type VerificationStore interface {
	CreateVerification(ctx context.Context, v *models.Verification) error
	GetVerificationByTokenHash(ctx context.Context, tokenHash string) (*models.Verification, error)
	DeleteVerification(ctx context.Context, id int64) (int64, error)
	DeleteNominationVerification(ctx context.Context, nominationID int64) error
	DeleteVerificationsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
	ListVerifications(ctx context.Context) ([]models.VerificationDetail, error)
}

// Store bundles the entity stores behind the award services. InTx hands fn
// a Store bound to a single transaction.
type Store interface {
	LecturerStore
	NominationStore
	VerificationStore
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// UserStore persists administrator accounts.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
}

var (
	_ LecturerStore     = (*Repository)(nil)
	_ NominationStore   = (*Repository)(nil)
	_ VerificationStore = (*Repository)(nil)
	_ UserStore         = (*Repository)(nil)
	_ Store             = (*Repository)(nil)
)
