// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates renders the HTML pages.
//
// Pages are html/template files embedded into the binary. Each page is
// parsed together with layout.html and exposed as a templ.Component, so
// handlers render everything through the same templ interface. Template
// functions are bound to the request context at render time, which gives
// pages access to translations, the CSRF token and the logged-in user.
package templates

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"codeberg.org/oliverandrich/teaching-award/internal/appcontext"
	"codeberg.org/oliverandrich/teaching-award/internal/i18n"
	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"codeberg.org/oliverandrich/teaching-award/internal/validate"
	"github.com/a-h/templ"
)

//go:embed html/*.html
var files embed.FS

const layoutFile = "layout.html"

var pages = mustParse()

func mustParse() map[string]*template.Template {
	p, err := parse(files)
	if err != nil {
		panic(fmt.Sprintf("parse templates: %v", err))
	}
	return p
}

// parse returns one template set per page, each including the layout.
func parse(fsys fs.FS) (map[string]*template.Template, error) {
	base, err := template.New(layoutFile).Funcs(funcs(context.Background())).ParseFS(fsys, "html/"+layoutFile)
	if err != nil {
		return nil, err
	}

	names, err := fs.Glob(fsys, "html/*.html")
	if err != nil {
		return nil, err
	}

	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		file := path.Base(name)
		if file == layoutFile {
			continue
		}
		t, err := template.Must(base.Clone()).ParseFS(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		out[strings.TrimSuffix(file, ".html")] = t
	}
	return out, nil
}

// Page renders a full page wrapped in the layout.
func Page(name string, data any) templ.Component {
	return Fragment(name, "layout", data)
}

// Fragment renders a single named block of a page, for htmx swaps.
func Fragment(name, block string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := pages[name]
		if !ok {
			return fmt.Errorf("unknown template %q", name)
		}
		clone, err := t.Clone()
		if err != nil {
			return err
		}
		return clone.Funcs(funcs(ctx)).ExecuteTemplate(w, block, data)
	})
}

// funcs returns the template functions bound to ctx.
func funcs(ctx context.Context) template.FuncMap {
	return template.FuncMap{
		"t": func(key string) string {
			return i18n.T(ctx, key)
		},
		"tdata": func(key string, pairs ...any) string {
			return i18n.TData(ctx, key, dataMap(pairs, false))
		},
		// thtml renders a translation containing markup. Catalogs are
		// trusted, arguments are escaped.
		"thtml": func(key string, pairs ...any) template.HTML {
			return template.HTML(i18n.TData(ctx, key, dataMap(pairs, true))) //nolint:gosec // trusted catalog
		},
		"tplural": func(key string, n int64) string {
			return i18n.TPlural(ctx, key, int(n))
		},
		"locale": func() string {
			return i18n.GetLocale(ctx)
		},
		"csrf": func() string {
			return appcontext.CSRFToken(ctx)
		},
		"css": func() string {
			return appcontext.AssetsFrom(ctx).CSSPath
		},
		"js": func() string {
			return appcontext.AssetsFrom(ctx).JSPath
		},
		"user": func() *models.User {
			return appcontext.UserFrom(ctx)
		},
		"faculty": func(f models.Faculty) string {
			return i18n.T(ctx, "faculty_"+strings.ToLower(string(f)))
		},
		"faculties": models.Faculties,
		"datetime": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04 UTC")
		},
		"fielderr": func(errs *validate.FieldErrors, field string) string {
			key := errs.Get(field)
			if key == "" {
				return ""
			}
			return i18n.T(ctx, key)
		},
	}
}

func dataMap(pairs []any, escape bool) map[string]any {
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		val := pairs[i+1]
		if escape {
			val = template.HTMLEscapeString(fmt.Sprint(val))
		}
		m[key] = val
	}
	return m
}
