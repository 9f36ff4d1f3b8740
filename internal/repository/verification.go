// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/teaching-award/internal/models"
)

const verificationColumns = `id, nomination_id, token_hash, created_at, expires_at`

// CreateVerification inserts v and sets its ID. A nomination holds at most
// one verification; callers delete the old one first.
func (r *Repository) CreateVerification(ctx context.Context, v *models.Verification) error {
	return r.get(ctx, &v.ID,
		`INSERT INTO verifications (nomination_id, token_hash, created_at, expires_at)
		 VALUES (?, ?, ?, ?) RETURNING id`,
		v.NominationID, v.TokenHash, v.CreatedAt.UTC(), v.ExpiresAt.UTC())
}

// GetVerificationByTokenHash retrieves a verification by token hash.
func (r *Repository) GetVerificationByTokenHash(ctx context.Context, tokenHash string) (*models.Verification, error) {
	var v models.Verification
	err := r.get(ctx, &v, `SELECT `+verificationColumns+` FROM verifications WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// DeleteVerification deletes a verification by ID and reports how many
// rows were removed.
func (r *Repository) DeleteVerification(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, `DELETE FROM verifications WHERE id = ?`, id)
}

// DeleteNominationVerification deletes the verification of a nomination, if any.
func (r *Repository) DeleteNominationVerification(ctx context.Context, nominationID int64) error {
	_, err := r.exec(ctx, `DELETE FROM verifications WHERE nomination_id = ?`, nominationID)
	return err
}

// DeleteVerificationsExpiredBefore deletes verifications that expired before cutoff.
func (r *Repository) DeleteVerificationsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.exec(ctx, `DELETE FROM verifications WHERE expires_at < ?`, cutoff.UTC())
}

// ListVerifications returns all pending verifications, soonest expiry first.
func (r *Repository) ListVerifications(ctx context.Context) ([]models.VerificationDetail, error) {
	verifications := []models.VerificationDetail{}
	err := r.selectAll(ctx, &verifications,
		`SELECT v.id, v.nomination_id, v.token_hash, v.created_at, v.expires_at,
			n.sub_email, l.first_name, l.last_name
		 FROM verifications v
		 JOIN nominations n ON n.id = v.nomination_id
		 JOIN lecturers l ON l.id = n.lecturer_id
		 ORDER BY v.expires_at, v.id`)
	if err != nil {
		return nil, err
	}
	return verifications, nil
}
