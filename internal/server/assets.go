// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"log/slog"

	"codeberg.org/oliverandrich/teaching-award/internal/appcontext"
	"codeberg.org/oliverandrich/teaching-award/internal/assets"
)

// findAssets returns the content-hashed asset paths.
func findAssets() *appcontext.Assets {
	a := &appcontext.Assets{
		CSSPath: assets.CSSPath(),
		JSPath:  assets.JSPath(),
	}
	slog.Debug("assets loaded", "css", a.CSSPath, "js", a.JSPath)
	return a
}
