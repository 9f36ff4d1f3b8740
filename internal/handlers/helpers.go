// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/teaching-award/internal/htmx"
	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render renders a templ component with the given status code.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := component.Render(c.Request().Context(), buf); err != nil {
		return err
	}

	return c.HTML(statusCode, buf.String())
}

// redirect sends a 303 after a form post, or HX-Redirect for htmx requests.
func redirect(c echo.Context, url string) error {
	htmx.Redirect(c.Response(), c.Request(), url)
	return nil
}

func isHtmx(c echo.Context) bool {
	return htmx.ParseRequest(c.Request()).Partial()
}

// parseFaculty returns f as a known faculty, or "".
func parseFaculty(f string) models.Faculty {
	faculty := models.Faculty(strings.ToUpper(strings.TrimSpace(f)))
	if !faculty.Valid() {
		return ""
	}
	return faculty
}

// idParam parses a positive integer path parameter. Anything else is a 404.
func idParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusNotFound)
	}
	return id, nil
}

// safeNext keeps post-login redirects on this site.
func safeNext(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
