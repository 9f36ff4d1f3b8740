// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build dev

// Package assets serves the stylesheet and script straight from disk in
// dev builds, so edits show up on reload.
package assets

import (
	"net/http"
)

const staticDir = "internal/assets/static"

func CSSPath() string { return "/static/css/styles.css" }

func JSPath() string { return "/static/js/app.js" }

// FileServer serves staticDir relative to the working directory.
func FileServer() http.Handler {
	return http.StripPrefix("/static", http.FileServer(http.Dir(staticDir)))
}
