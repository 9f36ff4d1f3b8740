// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers implements the HTTP handlers of the public site and
// the admin area.
package handlers

import (
	"context"
	"net/http"

	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"codeberg.org/oliverandrich/teaching-award/internal/repository"
	"codeberg.org/oliverandrich/teaching-award/internal/services/auth"
	"codeberg.org/oliverandrich/teaching-award/internal/services/lecturers"
	"codeberg.org/oliverandrich/teaching-award/internal/services/nomination"
	"codeberg.org/oliverandrich/teaching-award/internal/services/session"
	"codeberg.org/oliverandrich/teaching-award/internal/services/verification"
	"codeberg.org/oliverandrich/teaching-award/internal/sse"
	"codeberg.org/oliverandrich/teaching-award/internal/validate"
	"github.com/labstack/echo/v4"
)

// Verifier redeems and renews confirmation tokens.
type Verifier interface {
	Redeem(ctx context.Context, token string) (verification.Result, error)
	Renew(ctx context.Context, addr string) (int, error)
}

// Submitter stores nominations.
type Submitter interface {
	Submit(ctx context.Context, p nomination.SubmitParams) (*models.Nomination, error)
}

// Deps are the services the handlers depend on.
type Deps struct {
	Repo        repository.Store
	Lecturers   *lecturers.Service
	Nominations Submitter
	Verifier    Verifier
	Auth        *auth.Service
	Sessions    *session.Manager
	Validator   *validate.Validator
	Events      *sse.Hub // optional live feed for admin pages
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	repo        repository.Store
	lecturers   *lecturers.Service
	nominations Submitter
	verifier    Verifier
	auth        *auth.Service
	sessions    *session.Manager
	validator   *validate.Validator
	events      *sse.Hub
}

// New creates a new Handlers instance.
func New(d Deps) *Handlers {
	return &Handlers{
		repo:        d.Repo,
		lecturers:   d.Lecturers,
		nominations: d.Nominations,
		verifier:    d.Verifier,
		auth:        d.Auth,
		sessions:    d.Sessions,
		validator:   d.Validator,
		events:      d.Events,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
