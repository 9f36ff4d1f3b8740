// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"codeberg.org/oliverandrich/teaching-award/internal/repository"
	"codeberg.org/oliverandrich/teaching-award/internal/templates"
	"github.com/labstack/echo/v4"
)

// AdminLecturers lists all lecturers with their tallies.
func (h *Handlers) AdminLecturers(c echo.Context) error {
	faculty := parseFaculty(c.QueryParam("faculty"))

	list, err := h.lecturers.All(c.Request().Context(), faculty)
	if err != nil {
		return err
	}

	return Render(c, http.StatusOK, templates.Page("admin_lecturers", templates.AdminLecturersData{
		Faculty:   faculty,
		Lecturers: list,
	}))
}

// AdminLecturer shows one lecturer.
func (h *Handlers) AdminLecturer(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	l, err := h.lecturers.Get(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	return Render(c, http.StatusOK, templates.Page("admin_lecturer", templates.AdminLecturerData{Lecturer: l}))
}

// ToggleFavorite flips the favorite flag. The form posts the current state
// as "is-favorite": "no" marks the lecturer, anything else unmarks it. A
// missing value counts as "no".
func (h *Handlers) ToggleFavorite(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}
	current := "no"
	if values, ok := form["is-favorite"]; ok && len(values) > 0 {
		current = values[0]
	}

	l, err := h.lecturers.ToggleFavorite(c.Request().Context(), id, current)
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	if isHtmx(c) {
		return Render(c, http.StatusOK, templates.Fragment("admin_lecturer", "detail", templates.AdminLecturerData{Lecturer: l}))
	}
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/admin/lecturers/%d", id))
}

// AdminNominations lists nominations, optionally filtered by verified state.
func (h *Handlers) AdminNominations(c echo.Context) error {
	filter := c.QueryParam("verified")

	var verified *bool
	switch filter {
	case "yes":
		v := true
		verified = &v
	case "no":
		v := false
		verified = &v
	default:
		filter = ""
	}

	ctx := c.Request().Context()
	list, err := h.repo.ListNominations(ctx, verified)
	if err != nil {
		return fmt.Errorf("list nominations: %w", err)
	}
	stats, err := h.lecturers.Stats(ctx)
	if err != nil {
		return err
	}

	return Render(c, http.StatusOK, templates.Page("admin_nominations", templates.AdminNominationsData{
		Stats:       stats,
		Verified:    filter,
		Nominations: list,
	}))
}

// AdminVerifications lists pending confirmation tokens.
func (h *Handlers) AdminVerifications(c echo.Context) error {
	list, err := h.repo.ListVerifications(c.Request().Context())
	if err != nil {
		return fmt.Errorf("list verifications: %w", err)
	}

	return Render(c, http.StatusOK, templates.Page("admin_verifications", templates.AdminVerificationsData{
		Now:           time.Now(),
		Verifications: list,
	}))
}
