// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/oliverandrich/teaching-award/internal/appcontext"
	"codeberg.org/oliverandrich/teaching-award/internal/config"
	"codeberg.org/oliverandrich/teaching-award/internal/htmx"
	"codeberg.org/oliverandrich/teaching-award/internal/i18n"
	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"codeberg.org/oliverandrich/teaching-award/internal/services/session"
	"codeberg.org/oliverandrich/teaching-award/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newSessionManager(t *testing.T) *session.Manager {
	t.Helper()
	sessMgr, err := session.NewManager(&config.SessionConfig{
		CookieName: "_session",
		MaxAge:     3600,
		HashKey:    testHashKey,
	}, false)
	require.NoError(t, err)
	return sessMgr
}

// wrapContext installs appcontext.Context like customContext does.
func wrapContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		return next(&appcontext.Context{Context: c})
	}
}

func TestIsHashedAsset(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/static/js/app.abc12345.js", true},
		{"/static/css/styles.d073ff63.css", true},
		{"/static/js/app.js", false},
		{"/static/js/app.ABCDEFGH.js", false},
		{"/static/js/app.abcd123.js", false},
		{"/static/js/app.abcd12345.js", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHashedAsset(tt.path))
		})
	}
}

func TestStaticCacheHeaders(t *testing.T) {
	e := echo.New()
	e.Use(staticCacheHeaders())
	e.GET("/*", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	tests := []struct {
		path string
		want string
	}{
		{"/static/js/app.abc12345.js", "public, max-age=31536000, immutable"},
		{"/static/js/app.js", "no-cache"},
		{"/nominate", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.want, rec.Header().Get("Cache-Control"))
		})
	}
}

func TestI18nMiddleware(t *testing.T) {
	require.NoError(t, i18n.Init())

	e := echo.New()
	e.Use(i18nMiddleware())

	var locale string
	e.GET("/", func(c echo.Context) error {
		locale = i18n.GetLocale(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	tests := []struct {
		header string
		want   string
	}{
		{"de-DE,de;q=0.9", "de"},
		{"en-US", "en"},
		{"fr-FR", "en"},
		{"", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept-Language", tt.header)
			e.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, locale)
		})
	}
}

func TestCsrfToContext_WithToken(t *testing.T) {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("csrf", "test-token")
			return next(c)
		}
	})
	e.Use(csrfToContext())

	var token string
	e.GET("/", func(c echo.Context) error {
		token = appcontext.CSRFToken(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "test-token", token)
}

func TestCsrfMiddleware_SkipsInfrastructure(t *testing.T) {
	e := echo.New()
	e.Use(csrfMiddleware(&config.Config{Server: config.ServerConfig{BaseURL: "https://award.example"}}))
	e.GET("/*", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, rec.Result().Cookies())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "_csrf", cookies[0].Name)
	assert.True(t, cookies[0].Secure)
}

func TestCustomContext(t *testing.T) {
	assets := &appcontext.Assets{CSSPath: "/static/css/styles.abc12345.css", JSPath: "/static/js/app.def67890.js"}

	var captured *appcontext.Context
	handler := customContext(assets)(func(c echo.Context) error {
		captured = appcontext.From(c)
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(htmx.HeaderRequest, "true")
	c := echo.New().NewContext(req, httptest.NewRecorder())

	require.NoError(t, handler(c))
	require.NotNil(t, captured)
	assert.Same(t, assets, captured.Assets)
	assert.True(t, captured.IsHtmx())
	assert.Nil(t, captured.User)
	assert.Equal(t, assets, appcontext.AssetsFrom(captured.Request().Context()))
}

func TestAuthMiddleware_NoSession(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	e := echo.New()
	e.Use(wrapContext)
	e.Use(AuthMiddleware(newSessionManager(t), repo))

	var user *models.User
	e.GET("/", func(c echo.Context) error {
		user = appcontext.From(c).GetUser()
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, user)
}

func TestAuthMiddleware_WithSession(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	created := testutil.NewTestUser(t, repo, "jury", "correct horse battery staple")
	sessMgr := newSessionManager(t)
	cookie, err := sessMgr.Create(created.ID, created.Username)
	require.NoError(t, err)

	e := echo.New()
	e.Use(wrapContext)
	e.Use(AuthMiddleware(sessMgr, repo))

	var fromContext, fromRequest *models.User
	e.GET("/", func(c echo.Context) error {
		fromContext = appcontext.From(c).GetUser()
		fromRequest = appcontext.UserFrom(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	e.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, fromContext)
	require.NotNil(t, fromRequest)
	assert.Equal(t, created.ID, fromContext.ID)
	assert.Equal(t, "jury", fromRequest.Username)
}

func TestAuthMiddleware_ForgedCookie(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	e := echo.New()
	e.Use(AuthMiddleware(newSessionManager(t), repo))

	var user *models.User
	e.GET("/", func(c echo.Context) error {
		user = appcontext.UserFrom(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "_session", Value: "forged"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, user)
}

func TestAuthMiddleware_DeletedUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	sessMgr := newSessionManager(t)
	cookie, err := sessMgr.Create(99, "gone")
	require.NoError(t, err)

	e := echo.New()
	e.Use(AuthMiddleware(sessMgr, repo))

	var user *models.User
	e.GET("/", func(c echo.Context) error {
		user = appcontext.UserFrom(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Nil(t, user)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		htmx     bool
		wantCode int
		header   string
		want     string
	}{
		{"get keeps target", http.MethodGet, false, http.StatusSeeOther, "Location", "/admin/login?next=%2Fadmin%2Fnominations%3Fverified%3Dyes"},
		{"post drops target", http.MethodPost, false, http.StatusSeeOther, "Location", "/admin/login"},
		{"htmx redirects whole page", http.MethodPost, true, http.StatusNoContent, htmx.HeaderRedirect, "/admin/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.Use(wrapContext)
			e.Any("/admin/nominations", func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			}, RequireAuth())

			req := httptest.NewRequest(tt.method, "/admin/nominations?verified=yes", nil)
			if tt.htmx {
				req.Header.Set(htmx.HeaderRequest, "true")
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get(tt.header))
		})
	}
}

func TestRequireAuth_Authenticated(t *testing.T) {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := appcontext.WithUser(c.Request().Context(), &models.User{ID: 1, Username: "jury"})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	e.GET("/protected", func(c echo.Context) error {
		return c.String(http.StatusOK, "protected content")
	}, RequireAuth())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "protected content", rec.Body.String())
}

func TestRequestMetrics_PassesErrorsThrough(t *testing.T) {
	mw := requestMetrics()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background()), httptest.NewRecorder())

	err := mw(func(echo.Context) error { return echo.ErrNotFound })(c)

	assert.ErrorIs(t, err, echo.ErrNotFound)
}
