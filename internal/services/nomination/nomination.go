// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package nomination accepts nominations and starts their confirmation.
package nomination

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/oliverandrich/teaching-award/internal/metrics"
	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"codeberg.org/oliverandrich/teaching-award/internal/repository"
	"codeberg.org/oliverandrich/teaching-award/internal/services/verification"
	"codeberg.org/oliverandrich/teaching-award/internal/validate"
)

// MaxReasonLength limits the free-text reason, in characters.
const MaxReasonLength = 5000

var (
	// ErrAlreadyNominated is returned when the email already nominated the lecturer.
	ErrAlreadyNominated = errors.New("lecturer already nominated with this email")
	// ErrUnknownLecturer is returned when LecturerID does not exist.
	ErrUnknownLecturer = errors.New("unknown lecturer")
)

// Issuer starts the confirmation of a stored nomination.
type Issuer interface {
	Issue(ctx context.Context, nominationID int64) (string, error)
}

// SubmitParams is the nomination form. Either LecturerID names an existing
// lecturer or FirstName, LastName and Faculty describe a new one.
type SubmitParams struct { //nolint:govet // fieldalignment: mirrors the form
	LecturerID int64          `form:"lecturer" validate:"omitempty,min=1"`
	FirstName  string         `form:"first_name" validate:"required_without=LecturerID,max=100"`
	LastName   string         `form:"last_name" validate:"required_without=LecturerID,max=100"`
	Faculty    models.Faculty `form:"faculty" validate:"required_without=LecturerID,faculty"`
	Email      string         `form:"email" validate:"required,email,max=254,institutional"`
	Reason     string         `form:"reason" validate:"required,max=5000"`
	IsStudent  bool           `form:"is_student"`
}

// Normalize trims all text fields and lower-cases the email.
func (p *SubmitParams) Normalize() {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Faculty = models.Faculty(strings.ToUpper(strings.TrimSpace(string(p.Faculty))))
	p.Email = verification.NormalizeEmail(p.Email)
	p.Reason = strings.TrimSpace(p.Reason)
}

// Service validates and stores nominations.
type Service struct {
	store     repository.Store
	validator *validate.Validator
	issuer    Issuer
}

// NewService creates a nomination service.
func NewService(store repository.Store, validator *validate.Validator, issuer Issuer) *Service {
	return &Service{store: store, validator: validator, issuer: issuer}
}

// Submit validates p, stores an unverified nomination and emails its
// confirmation link. Invalid input yields *validate.FieldErrors.
func (s *Service) Submit(ctx context.Context, p SubmitParams) (*models.Nomination, error) {
	p.Normalize()
	if err := s.validator.Validate(&p); err != nil {
		return nil, err
	}

	var n *models.Nomination
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		lecturer, err := s.lecturer(ctx, tx, p)
		if err != nil {
			return err
		}

		exists, err := tx.NominationExists(ctx, lecturer.ID, p.Email)
		if err != nil {
			return fmt.Errorf("check nomination: %w", err)
		}
		if exists {
			return alreadyNominated()
		}

		n = &models.Nomination{
			LecturerID: lecturer.ID,
			SubEmail:   p.Email,
			Reason:     p.Reason,
			IsStudent:  p.IsStudent,
		}
		if err := tx.CreateNomination(ctx, n); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return alreadyNominated()
			}
			if errors.Is(err, repository.ErrConstraint) {
				return validate.NewFieldError("email", "validation_institutional", err)
			}
			return fmt.Errorf("create nomination: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.NominationsSubmitted.Inc()

	if _, err := s.issuer.Issue(ctx, n.ID); err != nil {
		return n, fmt.Errorf("issue token: %w", err)
	}
	return n, nil
}

func (s *Service) lecturer(ctx context.Context, tx repository.Store, p SubmitParams) (*models.Lecturer, error) {
	if p.LecturerID != 0 {
		l, err := tx.GetLecturer(ctx, p.LecturerID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validate.NewFieldError("lecturer", "validation_lecturer_unknown", ErrUnknownLecturer)
		}
		if err != nil {
			return nil, fmt.Errorf("get lecturer: %w", err)
		}
		return l, nil
	}

	l, err := tx.GetOrCreateLecturer(ctx, p.FirstName, p.LastName, p.Faculty)
	if err != nil {
		return nil, fmt.Errorf("get or create lecturer: %w", err)
	}
	return l, nil
}

func alreadyNominated() error {
	return validate.NewFieldError("email", "validation_already_nominated", ErrAlreadyNominated)
}
