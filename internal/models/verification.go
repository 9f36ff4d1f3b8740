// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Verification stores the hashed confirmation token of an unverified nomination.
type Verification struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64     `db:"id" json:"id"`
	NominationID int64     `db:"nomination_id" json:"nomination_id"`
	TokenHash    string    `db:"token_hash" json:"-"` // SHA256 hash
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
}

// IsExpired reports whether the token can no longer be redeemed at now.
func (v *Verification) IsExpired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// VerificationDetail is a verification joined with its nomination for the admin overview.
type VerificationDetail struct {
	Verification
	SubEmail  string `db:"sub_email" json:"sub_email"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

func (v *VerificationDetail) LecturerName() string {
	return v.FirstName + " " + v.LastName
}
