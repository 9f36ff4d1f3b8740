// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"time"

	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"codeberg.org/oliverandrich/teaching-award/internal/services/verification"
	"codeberg.org/oliverandrich/teaching-award/internal/validate"
)

// IndexData backs the public lecturer list.
type IndexData struct {
	Stats     *models.Stats
	Query     string
	Faculty   models.Faculty
	Lecturers []models.LecturerSummary
	ShowHint  bool
}

// NominateForm holds the submitted nomination form values.
type NominateForm struct {
	Lecturer  string
	FirstName string
	LastName  string
	Faculty   string
	Email     string
	Reason    string
	IsStudent bool
}

// NominateData backs the nomination form.
type NominateData struct {
	Errors    *validate.FieldErrors
	Lecturer  *models.Lecturer // preselected lecturer, if any
	Form      NominateForm
	MaxReason int
}

// SuccessData backs the confirmation pages after submitting or renewing.
type SuccessData struct {
	Title   string // i18n key
	Message string // i18n key, may contain markup
}

// VerifyData backs the token redemption page.
type VerifyData struct {
	Result verification.Result
}

// RenewData backs the renewal form.
type RenewData struct {
	Errors *validate.FieldErrors
	Email  string
}

// ErrorData backs the error page.
type ErrorData struct {
	Title   string
	Message string
	Code    int
}

// LoginData backs the admin login form.
type LoginData struct {
	Username string
	Next     string
	Failed   bool
}

// AdminLecturersData backs the admin lecturer list.
type AdminLecturersData struct {
	Faculty   models.Faculty
	Lecturers []models.LecturerSummary
}

// AdminLecturerData backs the admin lecturer detail page and its fragment.
type AdminLecturerData struct {
	Lecturer *models.LecturerSummary
}

// AdminNominationsData backs the admin nomination list.
type AdminNominationsData struct {
	Stats       *models.Stats
	Verified    string // "", "yes" or "no"
	Nominations []models.NominationDetail
}

// AdminVerificationsData backs the admin verification list.
type AdminVerificationsData struct {
	Now           time.Time
	Verifications []models.VerificationDetail
}
