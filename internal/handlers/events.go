// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/oliverandrich/teaching-award/internal/appcontext"
	"codeberg.org/oliverandrich/teaching-award/internal/sse"
	"codeberg.org/oliverandrich/teaching-award/internal/templates"
	"github.com/labstack/echo/v4"
)

const heartbeatInterval = 30 * time.Second

// Events streams live nomination tallies to the admin pages. Each
// stream renders the tallies in its own locale when notified.
func (h *Handlers) Events(c echo.Context) error {
	if h.events == nil {
		return echo.ErrNotFound
	}

	ctx := c.Request().Context()
	var userID int64
	if user := appcontext.UserFrom(ctx); user != nil {
		userID = user.ID
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	ch := h.events.Register(userID)
	defer h.events.Unregister(ch)

	if err := h.writeStats(ctx, res); err != nil {
		return nil //nolint:nilerr // client went away
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if event != sse.EventStats {
				continue
			}
			if err := h.writeStats(ctx, res); err != nil {
				return nil //nolint:nilerr // client went away
			}
		case <-ticker.C:
			if err := flushString(res, sse.Heartbeat); err != nil {
				return nil //nolint:nilerr // client went away
			}
		}
	}
}

func (h *Handlers) writeStats(ctx context.Context, res *echo.Response) error {
	stats, err := h.lecturers.Stats(ctx)
	if err != nil {
		slog.WarnContext(ctx, "live stats unavailable", "error", err)
		return nil
	}

	var buf bytes.Buffer
	if err := templates.Fragment("admin_nominations", "live_stats", stats).Render(ctx, &buf); err != nil {
		slog.ErrorContext(ctx, "failed to render live stats", "error", err)
		return nil
	}
	return flushString(res, sse.FormatEvent(sse.EventStats, buf.String()))
}

func flushString(res *echo.Response, s string) error {
	if _, err := io.WriteString(res, s); err != nil {
		return err
	}
	res.Flush()
	return nil
}

// notifyStats tells open admin streams that the tallies changed.
func (h *Handlers) notifyStats() {
	if h.events != nil {
		h.events.Broadcast(sse.EventStats)
	}
}
