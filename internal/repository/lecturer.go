// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"codeberg.org/oliverandrich/teaching-award/internal/search"
)

const lecturerColumns = `l.id, l.first_name, l.last_name, l.faculty, l.is_favorite, l.created_at`

// LecturerQuery filters the public lecturer list.
type LecturerQuery struct {
	Matcher search.Matcher
	Faculty models.Faculty
	Terms   []string
}

// CreateLecturer inserts l and sets its ID and CreatedAt.
func (r *Repository) CreateLecturer(ctx context.Context, l *models.Lecturer) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	return r.get(ctx, &l.ID,
		`INSERT INTO lecturers (first_name, last_name, faculty, is_favorite, created_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		l.FirstName, l.LastName, string(l.Faculty), l.IsFavorite, l.CreatedAt)
}

// GetLecturer retrieves a lecturer by ID.
func (r *Repository) GetLecturer(ctx context.Context, id int64) (*models.Lecturer, error) {
	var l models.Lecturer
	if err := r.get(ctx, &l, `SELECT `+lecturerColumns+` FROM lecturers l WHERE l.id = ?`, id); err != nil {
		return nil, err
	}
	return &l, nil
}

// GetOrCreateLecturer returns the lecturer with exactly this name and
// faculty, creating it when missing.
func (r *Repository) GetOrCreateLecturer(ctx context.Context, firstName, lastName string, faculty models.Faculty) (*models.Lecturer, error) {
	// ON CONFLICT keeps a PostgreSQL transaction usable when the lecturer
	// was created concurrently.
	_, err := r.exec(ctx,
		`INSERT INTO lecturers (first_name, last_name, faculty, is_favorite, created_at)
		 VALUES (?, ?, ?, FALSE, ?)
		 ON CONFLICT (first_name, last_name, faculty) DO NOTHING`,
		firstName, lastName, string(faculty), time.Now().UTC())
	if err != nil {
		return nil, err
	}

	var l models.Lecturer
	err = r.get(ctx, &l,
		`SELECT `+lecturerColumns+` FROM lecturers l
		 WHERE l.first_name = ? AND l.last_name = ? AND l.faculty = ?`,
		firstName, lastName, string(faculty))
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// SetLecturerFavorite sets or clears the favorite flag.
func (r *Repository) SetLecturerFavorite(ctx context.Context, id int64, favorite bool) error {
	n, err := r.exec(ctx, `UPDATE lecturers SET is_favorite = ? WHERE id = ?`, favorite, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchLecturers lists lecturers with at least one verified nomination.
// Every term must match the first or the last name. Results are ordered
// by faculty, first name and last name.
func (r *Repository) SearchLecturers(ctx context.Context, q LecturerQuery) ([]models.LecturerSummary, error) {
	var (
		where []string
		args  []any
	)
	if q.Faculty != "" {
		where = append(where, "l.faculty = ?")
		args = append(args, string(q.Faculty))
	}
	if q.Matcher != nil {
		for _, term := range q.Terms {
			clause, clauseArgs := q.Matcher.Where(term, "l.first_name", "l.last_name")
			where = append(where, clause)
			args = append(args, clauseArgs...)
		}
	}

	query := `SELECT ` + lecturerColumns + `, COUNT(n.id) AS nominations_verified
		FROM lecturers l
		JOIN nominations n ON n.lecturer_id = l.id AND n.is_verified = TRUE`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` GROUP BY ` + lecturerColumns + `
		ORDER BY l.faculty, l.first_name, l.last_name`

	lecturers := []models.LecturerSummary{}
	if err := r.selectAll(ctx, &lecturers, query, args...); err != nil {
		return nil, err
	}
	return lecturers, nil
}

const summaryQuery = `SELECT ` + lecturerColumns + `,
		COUNT(n.id) AS nominations,
		COALESCE(SUM(CASE WHEN n.is_verified THEN 1 ELSE 0 END), 0) AS nominations_verified
	FROM lecturers l
	LEFT JOIN nominations n ON n.lecturer_id = l.id`

// ListLecturers lists all lecturers with their tallies, optionally
// restricted to one faculty, ordered by first and last name.
func (r *Repository) ListLecturers(ctx context.Context, faculty models.Faculty) ([]models.LecturerSummary, error) {
	query := summaryQuery
	var args []any
	if faculty != "" {
		query += ` WHERE l.faculty = ?`
		args = append(args, string(faculty))
	}
	query += ` GROUP BY ` + lecturerColumns + ` ORDER BY l.first_name, l.last_name`

	lecturers := []models.LecturerSummary{}
	if err := r.selectAll(ctx, &lecturers, query, args...); err != nil {
		return nil, err
	}
	return lecturers, nil
}

// GetLecturerSummary retrieves one lecturer with its tallies.
func (r *Repository) GetLecturerSummary(ctx context.Context, id int64) (*models.LecturerSummary, error) {
	var l models.LecturerSummary
	err := r.get(ctx, &l, summaryQuery+` WHERE l.id = ? GROUP BY `+lecturerColumns, id)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
