// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"codeberg.org/oliverandrich/teaching-award/internal/i18n"
	"codeberg.org/oliverandrich/teaching-award/internal/templates"
	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler renders errors as HTML error pages. Server errors are
// logged with the request context, their details never reach the client.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}

	req := c.Request()
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(req.Context(), "request failed",
			"error", err,
			"method", req.Method,
			"uri", req.RequestURI,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)
	}

	if req.Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	title := http.StatusText(code)
	if title == "" {
		title = "Error"
	}

	data := templates.ErrorData{
		Code:    code,
		Title:   title,
		Message: errorMessage(req, code),
	}
	if renderErr := Render(c, code, templates.Page("error", data)); renderErr != nil {
		slog.ErrorContext(req.Context(), "failed to render error page", "error", renderErr)
		_ = c.String(code, strconv.Itoa(code)+" "+title)
	}
}

func errorMessage(r *http.Request, code int) string {
	switch code {
	case http.StatusNotFound, http.StatusInternalServerError:
		return i18n.T(r.Context(), "error_message_"+strconv.Itoa(code))
	default:
		return i18n.T(r.Context(), "error_message_default")
	}
}
