// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context and the request
// values templates read from context.Context.
package appcontext

import (
	"context"

	"codeberg.org/oliverandrich/teaching-award/internal/htmx"
	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"github.com/labstack/echo/v4"
)

type (
	csrfKey   struct{}
	assetsKey struct{}
	userKey   struct{}
)

// Assets holds paths to static assets.
type Assets struct {
	CSSPath string
	JSPath  string
}

// Context is a custom Echo context with typed fields for htmx, assets, and user.
type Context struct {
	echo.Context
	Htmx   *htmx.Request
	Assets *Assets
	User   *models.User // nil if not authenticated
}

// GetUser returns the authenticated user, or nil if not authenticated.
func (c *Context) GetUser() *models.User {
	return c.User
}

// IsAuthenticated returns true if the user is authenticated.
func (c *Context) IsAuthenticated() bool {
	return c.User != nil
}

// IsHtmx reports whether the request was issued by htmx.
func (c *Context) IsHtmx() bool {
	return c.Htmx != nil && c.Htmx.IsHtmx
}

// From returns the custom context wrapped around c, or nil.
func From(c echo.Context) *Context {
	if cc, ok := c.(*Context); ok {
		return cc
	}
	return nil
}

// WithCSRFToken stores the CSRF token for templates.
func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfKey{}, token)
}

// CSRFToken returns the CSRF token, or "".
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey{}).(string)
	return token
}

// WithAssets stores the asset paths for templates.
func WithAssets(ctx context.Context, a *Assets) context.Context {
	return context.WithValue(ctx, assetsKey{}, a)
}

// AssetsFrom returns the asset paths, falling back to unhashed names.
func AssetsFrom(ctx context.Context) *Assets {
	if a, ok := ctx.Value(assetsKey{}).(*Assets); ok && a != nil {
		return a
	}
	return &Assets{CSSPath: "/static/css/styles.css", JSPath: "/static/js/app.js"}
}

// WithUser stores the authenticated administrator.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the authenticated administrator, or nil.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey{}).(*models.User)
	return user
}
