// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

type Lecturer struct { //nolint:govet // fieldalignment: readability over optimization
	ID         int64     `db:"id" json:"id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Faculty    Faculty   `db:"faculty" json:"faculty"`
	IsFavorite bool      `db:"is_favorite" json:"is_favorite"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// FullName is the name shown to visitors and used in emails.
func (l *Lecturer) FullName() string {
	return l.FirstName + " " + l.LastName
}

// LecturerSummary is a lecturer together with its nomination tallies.
type LecturerSummary struct {
	Lecturer
	Nominations int64 `db:"nominations" json:"nominations"`
	Verified    int64 `db:"nominations_verified" json:"nominations_verified"`
}
