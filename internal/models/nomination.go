// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Nomination is one submitter's vote for a lecturer. It counts once IsVerified is set.
type Nomination struct { //nolint:govet // fieldalignment: readability over optimization
	ID         int64     `db:"id" json:"id"`
	LecturerID int64     `db:"lecturer_id" json:"lecturer_id"`
	SubEmail   string    `db:"sub_email" json:"sub_email"`
	Reason     string    `db:"reason" json:"reason"`
	SubDate    time.Time `db:"sub_date" json:"sub_date"`
	IsVerified bool      `db:"is_verified" json:"is_verified"`
	IsStudent  bool      `db:"is_student" json:"is_student"`
}

// NominationDetail adds the nominated lecturer's name for listings.
type NominationDetail struct {
	Nomination
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	Faculty   Faculty `db:"faculty" json:"faculty"`
}

func (n *NominationDetail) LecturerName() string {
	return n.FirstName + " " + n.LastName
}

// Stats are the public tallies shown above the lecturer list.
type Stats struct {
	Votes         int64 `db:"votes" json:"votes"`
	VotesVerified int64 `db:"votes_verified" json:"votes_verified"`
	Submitters    int64 `db:"submitters" json:"submitters"`
}
