// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"codeberg.org/oliverandrich/teaching-award/internal/appcontext"
	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"codeberg.org/oliverandrich/teaching-award/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminPassword = "correct horse battery staple"

func TestLoginPage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.serve(t, env.h.LoginPage, newRequest(http.MethodGet, "/admin/login?next=/admin/nominations", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="next" value="/admin/nominations"`)
}

func TestLoginPage_AlreadyLoggedIn(t *testing.T) {
	env := newTestEnv(t)
	req := newRequest(http.MethodGet, "/admin/login", nil)
	req = req.WithContext(appcontext.WithUser(req.Context(), &models.User{ID: 1, Username: "jury"}))

	rec := env.serve(t, env.h.LoginPage, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/lecturers", rec.Header().Get("Location"))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.NewTestUser(t, env.repo, "jury", adminPassword)

	form := url.Values{"username": {"jury"}, "password": {adminPassword}, "next": {"/admin/nominations"}}
	rec := env.serve(t, env.h.Login, newRequest(http.MethodPost, "/admin/login", form))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/nominations", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "_test_session", cookies[0].Name)

	req := newRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	data, err := env.sessions.Parse(req)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, user.ID, data.UserID)
}

func TestLogin_RejectsOffsiteNext(t *testing.T) {
	env := newTestEnv(t)
	testutil.NewTestUser(t, env.repo, "jury", adminPassword)

	for _, next := range []string{"https://evil.example", "//evil.example", "/\\evil.example", ""} {
		form := url.Values{"username": {"jury"}, "password": {adminPassword}, "next": {next}}
		rec := env.serve(t, env.h.Login, newRequest(http.MethodPost, "/admin/login", form))

		assert.Equal(t, "/admin/lecturers", rec.Header().Get("Location"), next)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	testutil.NewTestUser(t, env.repo, "jury", adminPassword)

	form := url.Values{"username": {"jury"}, "password": {"wrong"}}
	rec := env.serve(t, env.h.Login, newRequest(http.MethodPost, "/admin/login", form))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password.")
	assert.Contains(t, rec.Body.String(), `value="jury"`)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.serve(t, env.h.Logout, newRequest(http.MethodPost, "/admin/logout", url.Values{}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
