// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package htmx reads htmx request headers and answers in the way htmx
// expects.
package htmx

import (
	"net/http"
)

// Request headers.
const (
	HeaderRequest    = "HX-Request"
	HeaderBoosted    = "HX-Boosted"
	HeaderCurrentURL = "HX-Current-URL"
	HeaderTarget     = "HX-Target"
)

// Response headers.
const (
	HeaderRedirect = "HX-Redirect"
)

// Request is what the htmx headers tell about a request.
type Request struct {
	CurrentURL string
	Target     string // id of the element being swapped
	IsHtmx     bool
	IsBoosted  bool
}

// ParseRequest reads the htmx headers of r.
func ParseRequest(r *http.Request) *Request {
	return &Request{
		IsHtmx:     isTrue(r, HeaderRequest),
		IsBoosted:  isTrue(r, HeaderBoosted),
		CurrentURL: r.Header.Get(HeaderCurrentURL),
		Target:     r.Header.Get(HeaderTarget),
	}
}

// Partial reports whether r wants a fragment rather than a full page.
// Boosted navigation replaces the whole body, so it gets full pages.
func (r *Request) Partial() bool {
	return r != nil && r.IsHtmx && !r.IsBoosted
}

// Redirect sends the client to url. htmx requests get an HX-Redirect
// header so the whole page navigates instead of swapping a fragment.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isTrue(r, HeaderRequest) {
		w.Header().Set(HeaderRedirect, url)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func isTrue(r *http.Request, header string) bool {
	return r.Header.Get(header) == "true"
}
