// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package htmx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/oliverandrich/teaching-award/internal/htmx"
	"github.com/stretchr/testify/assert"
)

func request(headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/admin/lecturers/3/favorite", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestParseRequest(t *testing.T) {
	parsed := htmx.ParseRequest(request(map[string]string{
		htmx.HeaderRequest:    "true",
		htmx.HeaderCurrentURL: "https://award.example/admin/lecturers/3",
		htmx.HeaderTarget:     "lecturer-detail",
	}))

	assert.True(t, parsed.IsHtmx)
	assert.False(t, parsed.IsBoosted)
	assert.Equal(t, "https://award.example/admin/lecturers/3", parsed.CurrentURL)
	assert.Equal(t, "lecturer-detail", parsed.Target)
}

func TestPartial(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    bool
	}{
		{"plain browser", nil, false},
		{"htmx swap", map[string]string{htmx.HeaderRequest: "true"}, true},
		{"boosted link", map[string]string{htmx.HeaderRequest: "true", htmx.HeaderBoosted: "true"}, false},
		{"header not true", map[string]string{htmx.HeaderRequest: "1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, htmx.ParseRequest(request(tt.headers)).Partial())
		})
	}

	var missing *htmx.Request
	assert.False(t, missing.Partial())
}

func TestRedirect(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		wantCode int
		header   string
	}{
		{"browser", nil, http.StatusSeeOther, "Location"},
		{"htmx", map[string]string{htmx.HeaderRequest: "true"}, http.StatusNoContent, htmx.HeaderRedirect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			htmx.Redirect(rec, request(tt.headers), "/admin/login")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "/admin/login", rec.Header().Get(tt.header))
		})
	}
}
