// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/teaching-award/internal/models"
)

const nominationDetailQuery = `SELECT n.id, n.lecturer_id, n.sub_email, n.reason, n.sub_date,
		n.is_verified, n.is_student, l.first_name, l.last_name, l.faculty
	FROM nominations n
	JOIN lecturers l ON l.id = n.lecturer_id`

// CreateNomination inserts n and sets its ID. A second nomination of the
// same lecturer by the same email yields ErrDuplicate.
func (r *Repository) CreateNomination(ctx context.Context, n *models.Nomination) error {
	if n.SubDate.IsZero() {
		n.SubDate = time.Now().UTC()
	}
	return r.get(ctx, &n.ID,
		`INSERT INTO nominations (lecturer_id, sub_email, reason, sub_date, is_verified, is_student)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		n.LecturerID, n.SubEmail, n.Reason, n.SubDate, n.IsVerified, n.IsStudent)
}

// GetNomination retrieves a nomination by ID.
func (r *Repository) GetNomination(ctx context.Context, id int64) (*models.Nomination, error) {
	var n models.Nomination
	err := r.get(ctx, &n,
		`SELECT id, lecturer_id, sub_email, reason, sub_date, is_verified, is_student
		 FROM nominations WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// NominationExists checks if email already nominated the lecturer.
func (r *Repository) NominationExists(ctx context.Context, lecturerID int64, email string) (bool, error) {
	var exists bool
	err := r.get(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM nominations WHERE lecturer_id = ? AND sub_email = ?)`,
		lecturerID, email)
	return exists, err
}

// MarkNominationVerified sets is_verified on a nomination.
func (r *Repository) MarkNominationVerified(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, `UPDATE nominations SET is_verified = TRUE WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUnverifiedNominations returns the unverified nominations submitted
// with email, oldest first.
func (r *Repository) ListUnverifiedNominations(ctx context.Context, email string) ([]models.NominationDetail, error) {
	nominations := []models.NominationDetail{}
	err := r.selectAll(ctx, &nominations,
		nominationDetailQuery+` WHERE n.sub_email = ? AND n.is_verified = FALSE ORDER BY n.sub_date, n.id`,
		email)
	if err != nil {
		return nil, err
	}
	return nominations, nil
}

// ListNominations returns all nominations, newest first. A non-nil
// verified restricts the list to that state.
func (r *Repository) ListNominations(ctx context.Context, verified *bool) ([]models.NominationDetail, error) {
	query := nominationDetailQuery
	var args []any
	if verified != nil {
		query += ` WHERE n.is_verified = ?`
		args = append(args, *verified)
	}
	query += ` ORDER BY n.sub_date DESC, n.id DESC`

	nominations := []models.NominationDetail{}
	if err := r.selectAll(ctx, &nominations, query, args...); err != nil {
		return nil, err
	}
	return nominations, nil
}

// GetStats counts all nominations, the verified ones and distinct submitters.
func (r *Repository) GetStats(ctx context.Context) (*models.Stats, error) {
	var s models.Stats
	err := r.get(ctx, &s,
		`SELECT COUNT(*) AS votes,
			COALESCE(SUM(CASE WHEN is_verified THEN 1 ELSE 0 END), 0) AS votes_verified,
			COUNT(DISTINCT sub_email) AS submitters
		 FROM nominations`)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
