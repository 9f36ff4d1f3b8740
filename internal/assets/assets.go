// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build !dev

// Package assets provides embedded static assets with content-hashed filenames.
package assets

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

//go:embed static
var staticFS embed.FS

const (
	cssFile = "css/styles.css"
	jsFile  = "js/app.js"
)

var (
	cssPath = "/static/" + cssFile
	jsPath  = "/static/" + jsFile

	// hashed maps content-hashed names to embedded files.
	hashed = map[string]string{}
)

func init() {
	cssPath = register(cssFile)
	jsPath = register(jsFile)
	slog.Debug("loaded asset paths", "css", cssPath, "js", jsPath)
}

// register returns the URL of name with an 8 character content hash
// inserted before the extension, e.g. /static/css/styles.1a2b3c4d.css.
func register(name string) string {
	data, err := staticFS.ReadFile("static/" + name)
	if err != nil {
		slog.Error("missing embedded asset", "file", name, "error", err)
		return "/static/" + name
	}
	sum := sha256.Sum256(data)
	ext := path.Ext(name)
	hashedName := strings.TrimSuffix(name, ext) + "." + hex.EncodeToString(sum[:4]) + ext
	hashed[hashedName] = name
	return "/static/" + hashedName
}

// CSSPath returns the path to the main CSS file.
func CSSPath() string {
	return cssPath
}

// JSPath returns the path to the application JS file.
func JSPath() string {
	return jsPath
}

// FileServer returns an http.Handler that serves embedded static files
// below /static/, resolving content-hashed names.
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("failed to create sub filesystem: " + err.Error())
	}
	files := http.FileServer(http.FS(sub))
	return http.StripPrefix("/static", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if name, ok := hashed[strings.TrimPrefix(r.URL.Path, "/")]; ok {
			r2 := r.Clone(r.Context())
			r2.URL.Path = "/" + name
			files.ServeHTTP(w, r2)
			return
		}
		files.ServeHTTP(w, r)
	}))
}
