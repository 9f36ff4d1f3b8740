// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"codeberg.org/oliverandrich/teaching-award/internal/appcontext"
	"codeberg.org/oliverandrich/teaching-award/internal/services/auth"
	"codeberg.org/oliverandrich/teaching-award/internal/templates"
	"github.com/labstack/echo/v4"
)

const adminHome = "/admin/lecturers"

// LoginPage renders the login page.
func (h *Handlers) LoginPage(c echo.Context) error {
	if appcontext.UserFrom(c.Request().Context()) != nil {
		return c.Redirect(http.StatusSeeOther, adminHome)
	}
	return Render(c, http.StatusOK, templates.Page("admin_login", templates.LoginData{
		Next: safeNext(c.QueryParam("next"), ""),
	}))
}

// Login checks the credentials and sets the session cookie.
func (h *Handlers) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	next := safeNext(c.FormValue("next"), adminHome)

	user, err := h.auth.Login(c.Request().Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return Render(c, http.StatusUnauthorized, templates.Page("admin_login", templates.LoginData{
			Username: username,
			Next:     safeNext(c.FormValue("next"), ""),
			Failed:   true,
		}))
	}
	if err != nil {
		return err
	}

	cookie, err := h.sessions.Create(user.ID, user.Username)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)

	return c.Redirect(http.StatusSeeOther, next)
}

// Logout clears the session cookie.
func (h *Handlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return redirect(c, "/")
}
