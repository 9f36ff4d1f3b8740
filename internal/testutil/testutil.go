// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"codeberg.org/oliverandrich/teaching-award/internal/database"
	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"codeberg.org/oliverandrich/teaching-award/internal/repository"
	"codeberg.org/oliverandrich/teaching-award/internal/services/email"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestLecturer creates a lecturer in the database.
func NewTestLecturer(t *testing.T, repo *repository.Repository, firstName, lastName string, faculty models.Faculty) *models.Lecturer {
	t.Helper()
	l := &models.Lecturer{FirstName: firstName, LastName: lastName, Faculty: faculty}
	require.NoError(t, repo.CreateLecturer(context.Background(), l))
	return l
}

// NewTestNomination creates a nomination for a lecturer.
func NewTestNomination(t *testing.T, repo *repository.Repository, lecturerID int64, subEmail string, verified bool) *models.Nomination {
	t.Helper()
	n := &models.Nomination{
		LecturerID: lecturerID,
		SubEmail:   subEmail,
		Reason:     "Explains things clearly.",
		IsVerified: verified,
	}
	require.NoError(t, repo.CreateNomination(context.Background(), n))
	return n
}

// NewTestUser creates an administrator with the given password.
func NewTestUser(t *testing.T, repo *repository.Repository, username, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := repo.CreateUser(context.Background(), username, string(hash))
	require.NoError(t, err)
	return user
}

// VerificationOf returns the pending verification of a nomination, or
// repository.ErrNotFound when there is none.
func VerificationOf(t *testing.T, repo *repository.Repository, nominationID int64) (*models.Verification, error) {
	t.Helper()
	list, err := repo.ListVerifications(context.Background())
	require.NoError(t, err)
	for i := range list {
		if list[i].NominationID == nominationID {
			return &list[i].Verification, nil
		}
	}
	return nil, repository.ErrNotFound
}

// SentMail is one message captured by Mailer.
type SentMail struct {
	To            string
	Confirmations []email.Confirmation
}

// Mailer records confirmation emails instead of sending them.
type Mailer struct {
	Err  error
	Sent []SentMail
	mu   sync.Mutex
}

func (m *Mailer) SendConfirmation(_ context.Context, to string, confirmations []email.Confirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMail{To: to, Confirmations: confirmations})
	return nil
}

// Last returns the most recently recorded message.
func (m *Mailer) Last() (SentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return SentMail{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}

// Count returns the number of recorded messages.
func (m *Mailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewFormContext creates an Echo context carrying a url-encoded form body.
func NewFormContext(e *echo.Echo, method, path string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := NewFormRequest(method, path, form)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewEchoContextWithHeaders creates an Echo context with custom headers.
func NewEchoContextWithHeaders(e *echo.Echo, method, path string, body io.Reader, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewFormRequest creates a url-encoded form request.
func NewFormRequest(method, path string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}
