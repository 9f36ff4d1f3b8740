// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package search

import (
	"fmt"
	"strings"
)

// Matcher turns a single search term into a SQL condition over name columns.
// Conditions use "?" placeholders; callers rebind them for their driver.
type Matcher interface {
	Name() string
	Where(term string, columns ...string) (string, []any)
}

// Trigram matches names whose trigram similarity to the term reaches Threshold.
// It needs the SQL functions similarity() and unaccent().
type Trigram struct {
	Threshold float64
}

// NewTrigram returns a trigram matcher using DefaultThreshold.
func NewTrigram() Trigram {
	return Trigram{Threshold: DefaultThreshold}
}

func (Trigram) Name() string { return "trigram" }

func (m Trigram) Where(term string, columns ...string) (string, []any) {
	parts := make([]string, len(columns))
	args := make([]any, 0, 2*len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("similarity(unaccent(lower(%s)), unaccent(lower(?))) >= ?", col)
		args = append(args, term, m.Threshold)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// Substring matches names containing the term, ignoring case. Columns are
// lower-cased with fold_case(), which unlike SQLite's lower() handles
// non-ASCII letters.
type Substring struct{}

func (Substring) Name() string { return "substring" }

func (Substring) Where(term string, columns ...string) (string, []any) {
	pattern := "%" + escapeLike(FoldCase(term)) + "%"
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf(`fold_case(%s) LIKE ? ESCAPE '\'`, col)
		args[i] = pattern
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// FoldCase lower-cases s the way PostgreSQL's lower() does under a UTF-8
// collation. It backs fold_case() on SQLite.
func FoldCase(s string) string {
	return strings.ToLower(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Terms splits a free-text query into its whitespace-separated terms.
func Terms(query string) []string {
	return strings.Fields(query)
}
