// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"codeberg.org/oliverandrich/teaching-award/internal/repository"
	"codeberg.org/oliverandrich/teaching-award/internal/services/lecturers"
	"codeberg.org/oliverandrich/teaching-award/internal/services/nomination"
	"codeberg.org/oliverandrich/teaching-award/internal/services/verification"
	"codeberg.org/oliverandrich/teaching-award/internal/templates"
	"codeberg.org/oliverandrich/teaching-award/internal/validate"
	"github.com/labstack/echo/v4"
)

const maxReasonLength = 5000

// RenewForm is the token renewal form.
type RenewForm struct {
	Email string `form:"email" validate:"required,email,max=254"`
}

// Index renders the list of nominated lecturers.
func (h *Handlers) Index(c echo.Context) error {
	ctx := c.Request().Context()

	query := strings.TrimSpace(c.QueryParam("q"))
	faculty := parseFaculty(c.QueryParam("faculty"))

	list, err := h.lecturers.List(ctx, lecturers.Filter{Query: query, Faculty: faculty})
	if err != nil {
		return err
	}
	stats, err := h.lecturers.Stats(ctx)
	if err != nil {
		return err
	}

	return Render(c, http.StatusOK, templates.Page("index", templates.IndexData{
		Stats:     stats,
		Query:     query,
		Faculty:   faculty,
		Lecturers: list,
		ShowHint:  !h.sessions.HintDismissed(c.Request()),
	}))
}

// DismissHint hides the language hint for the rest of the browser session.
func (h *Handlers) DismissHint(c echo.Context) error {
	cookie, err := h.sessions.DismissHint()
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return redirect(c, "/")
}

// NominateForm renders the nomination form, prefilled from the query.
func (h *Handlers) NominateForm(c echo.Context) error {
	form := templates.NominateForm{
		Lecturer:  c.QueryParam("lecturer"),
		FirstName: c.QueryParam("first_name"),
		LastName:  c.QueryParam("last_name"),
		Faculty:   c.QueryParam("faculty"),
		Email:     c.QueryParam("email"),
		Reason:    c.QueryParam("reason"),
	}

	lecturer, err := h.preselected(c, form.Lecturer)
	if err != nil {
		return err
	}

	return Render(c, http.StatusOK, templates.Page("nominate", templates.NominateData{
		Form:      form,
		Lecturer:  lecturer,
		MaxReason: maxReasonLength,
	}))
}

// Nominate stores a nomination and sends its confirmation link.
func (h *Handlers) Nominate(c echo.Context) error {
	var p nomination.SubmitParams
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	ctx := c.Request().Context()
	_, err := h.nominations.Submit(ctx, p)

	var fe *validate.FieldErrors
	if errors.As(err, &fe) {
		form := templates.NominateForm{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Faculty:   string(p.Faculty),
			Email:     p.Email,
			Reason:    p.Reason,
			IsStudent: p.IsStudent,
		}
		var lecturer *models.Lecturer
		if p.LecturerID != 0 {
			form.Lecturer = strconv.FormatInt(p.LecturerID, 10)
			if lecturer, err = h.preselected(c, form.Lecturer); err != nil {
				return err
			}
		}
		return Render(c, http.StatusUnprocessableEntity, templates.Page("nominate", templates.NominateData{
			Errors:    fe,
			Form:      form,
			Lecturer:  lecturer,
			MaxReason: maxReasonLength,
		}))
	}
	if err != nil {
		return err
	}

	h.notifyStats()
	return redirect(c, "/nominate/success")
}

// NominateSuccess tells the submitter to check their inbox.
func (h *Handlers) NominateSuccess(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Page("success", templates.SuccessData{
		Title:   "success_nominate_title",
		Message: "success_nominate_message",
	}))
}

// Verify redeems a confirmation token.
func (h *Handlers) Verify(c echo.Context) error {
	result, err := h.verifier.Redeem(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}
	if result.Status == verification.StatusConfirmed {
		h.notifyStats()
	}
	return Render(c, http.StatusOK, templates.Page("verify", templates.VerifyData{Result: result}))
}

// RenewForm renders the renewal form.
func (h *Handlers) RenewForm(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Page("renew", templates.RenewData{
		Email: c.QueryParam("email"),
	}))
}

// Renew sends fresh confirmation links for all open nominations of an
// address. The outcome is the same whether or not any were found.
func (h *Handlers) Renew(c echo.Context) error {
	var form RenewForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}
	form.Email = strings.TrimSpace(form.Email)

	if err := h.validator.Validate(&form); err != nil {
		var fe *validate.FieldErrors
		if !errors.As(err, &fe) {
			return err
		}
		return Render(c, http.StatusUnprocessableEntity, templates.Page("renew", templates.RenewData{
			Errors: fe,
			Email:  form.Email,
		}))
	}

	ctx := c.Request().Context()
	n, err := h.verifier.Renew(ctx, form.Email)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "tokens_renewed", "count", n)

	return redirect(c, "/renew/success")
}

// RenewSuccess confirms a renewal request.
func (h *Handlers) RenewSuccess(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Page("success", templates.SuccessData{
		Title:   "success_renew_title",
		Message: "success_renew_message",
	}))
}

// preselected loads the lecturer named by a form or query value. Unknown
// or malformed ids yield nil so the free-text form is shown instead.
func (h *Handlers) preselected(c echo.Context, raw string) (*models.Lecturer, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return nil, nil //nolint:nilerr // not a lecturer id
	}

	l, err := h.lecturers.Get(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l.Lecturer, nil
}
