// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package search implements lecturer name matching.
//
// Two matchers exist: a trigram similarity matcher that tolerates typos and
// diacritics, and a plain substring matcher that every SQL store supports.
// The trigram functions in this file follow pg_trgm so that SQLite (where
// they are registered as Go functions) and PostgreSQL rank names alike.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold matches pg_trgm.similarity_threshold.
const DefaultThreshold = 0.3

var expansions = strings.NewReplacer("ß", "ss", "æ", "ae", "ø", "o", "œ", "oe", "ł", "l", "đ", "d")

// Unaccent strips diacritics, mirroring the unaccent extension closely
// enough for person names.
func Unaccent(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return expansions.Replace(out)
}

// Trigrams returns the set of trigrams of s. Words are runs of letters and
// digits, lower-cased and padded with two leading and one trailing blank.
func Trigrams(s string) map[string]struct{} {
	set := make(map[string]struct{})
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		padded := []rune("  " + w + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}
	return set
}

// Similarity returns the share of trigrams a and b have in common,
// between 0 (nothing shared) and 1 (identical sets).
func Similarity(a, b string) float64 {
	ta, tb := Trigrams(a), Trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for g := range ta {
		if _, ok := tb[g]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(ta)+len(tb)-shared)
}
