// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"codeberg.org/oliverandrich/teaching-award/internal/assets"
	"codeberg.org/oliverandrich/teaching-award/internal/config"
	"codeberg.org/oliverandrich/teaching-award/internal/i18n"
	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"codeberg.org/oliverandrich/teaching-award/internal/repository"
	"codeberg.org/oliverandrich/teaching-award/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	srv    *Server
	repo   *repository.Repository
	mailer *testutil.Mailer
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:        "localhost",
			Port:        8080,
			BaseURL:     "http://localhost:8080",
			MaxBodySize: 1,
		},
		Session: config.SessionConfig{
			CookieName: "_session",
			MaxAge:     3600,
			HashKey:    testHashKey,
		},
		Award: config.AwardConfig{
			EmailDomains:  []string{"ovgu.de", "st.ovgu.de"},
			TokenValidity: 48 * time.Hour,
			PurgeGrace:    30 * 24 * time.Hour,
			SearchMatcher: config.MatcherSubstring,
		},
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	require.NoError(t, i18n.Init())

	_, repo := testutil.NewTestDB(t)
	mailer := &testutil.Mailer{}
	srv, err := New(testConfig(), repo, mailer)
	require.NoError(t, err)

	return &testServer{srv: srv, repo: repo, mailer: mailer}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.srv.Echo.ServeHTTP(rec, req)
	return rec
}

// csrf fetches a page and returns the CSRF cookie it sets.
func (ts *testServer) csrf(t *testing.T, path string) *http.Cookie {
	t.Helper()
	rec := ts.do(httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_csrf" {
			return c
		}
	}
	t.Fatal("no csrf cookie set")
	return nil
}

func postForm(path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := testutil.NewFormRequest(http.MethodPost, path, form)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestRoutes_Health(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Empty(t, rec.Result().Cookies())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRoutes_Metrics(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "award_nominations_submitted_total")
}

func TestRoutes_HashedAsset(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, assets.CSSPath(), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
}

func TestRoutes_Index(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		want   string
	}{
		{"english", "en-US,en;q=0.9", `lang="en"`},
		{"german", "de-DE,de;q=0.9", `lang="de"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept-Language", tt.accept)

			rec := ts.do(req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestRoutes_NotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "The page you are looking for does not exist.")
}

func TestRoutes_PostWithoutCSRFToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(postForm("/", url.Values{}))

	assert.Contains(t, []int{http.StatusBadRequest, http.StatusForbidden}, rec.Code)
}

func TestRoutes_DismissHint(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.csrf(t, "/")

	rec := ts.do(postForm("/", url.Values{"csrf_token": {cookie.Value}}, cookie))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRoutes_NominateAndVerify(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.csrf(t, "/nominate")

	form := url.Values{
		"csrf_token": {cookie.Value},
		"first_name": {"Anna"},
		"last_name":  {"Schmidt"},
		"faculty":    {"FIN"},
		"email":      {"max@st.ovgu.de"},
		"reason":     {"Explains compilers with great patience."},
		"is_student": {"true"},
	}
	rec := ts.do(postForm("/nominate", form, cookie))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/nominate/success", rec.Header().Get("Location"))

	sent, ok := ts.mailer.Last()
	require.True(t, ok)
	assert.Equal(t, "max@st.ovgu.de", sent.To)
	require.Len(t, sent.Confirmations, 1)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/verify/"+sent.Confirmations[0].Token, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nomination confirmed")
}

func TestRoutes_AdminRequiresLogin(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/admin", "/admin/lecturers", "/admin/nominations", "/admin/verifications", "/admin/lecturers/1"} {
		t.Run(path, func(t *testing.T) {
			rec := ts.do(httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/admin/login?next="+url.QueryEscape(path), rec.Header().Get("Location"))
		})
	}
}

func TestRoutes_AdminLogin(t *testing.T) {
	ts := newTestServer(t)
	testutil.NewTestUser(t, ts.repo, "jury", "correct horse battery staple")
	csrfCookie := ts.csrf(t, "/admin/login")

	rec := ts.do(postForm("/admin/login", url.Values{
		"csrf_token": {csrfCookie.Value},
		"username":   {"jury"},
		"password":   {"correct horse battery staple"},
		"next":       {"/admin/nominations"},
	}, csrfCookie))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/nominations", rec.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_session" {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	req := httptest.NewRequest(http.MethodGet, "/admin/lecturers", nil)
	req.AddCookie(sessionCookie)
	rec = ts.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "All lecturers")
}

func TestRoutes_SessionForUnknownUser(t *testing.T) {
	ts := newTestServer(t)
	cookie, err := newSessionManager(t).Create(42, "gone")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/lecturers", nil)
	req.AddCookie(cookie)
	rec := ts.do(req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/admin/login"))
}

func TestRoutes_EventsRequireLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/admin/events", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestRoutes_TrailingSlashRedirects(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/nominate/?lecturer=3", nil))

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/nominate?lecturer=3", rec.Header().Get("Location"))
}

func TestNew_StoresConfiguredDomains(t *testing.T) {
	require.NoError(t, i18n.Init())
	_, repo := testutil.NewTestDB(t)
	cfg := testConfig()
	cfg.Award.EmailDomains = []string{"uni.example"}

	_, err := New(cfg, repo, &testutil.Mailer{})
	require.NoError(t, err)

	ctx := context.Background()
	l := testutil.NewTestLecturer(t, repo, "Anna", "Schmidt", models.FacultyFIN)
	require.NoError(t, repo.CreateNomination(ctx, &models.Nomination{LecturerID: l.ID, SubEmail: "max@uni.example", Reason: "x"}))
	err = repo.CreateNomination(ctx, &models.Nomination{LecturerID: l.ID, SubEmail: "max@ovgu.de", Reason: "x"})
	assert.ErrorIs(t, err, repository.ErrConstraint)
}
