// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package search_test

import (
	"testing"

	"codeberg.org/oliverandrich/teaching-award/internal/search"
	"github.com/stretchr/testify/assert"
)

func TestTrigrams(t *testing.T) {
	got := search.Trigrams("Cat")

	assert.Len(t, got, 4)
	for _, g := range []string{"  c", " ca", "cat", "at "} {
		assert.Contains(t, got, g)
	}
}

func TestTrigrams_SplitsWords(t *testing.T) {
	got := search.Trigrams("ab-cd")

	assert.Contains(t, got, "ab ")
	assert.Contains(t, got, "  c")
	assert.NotContains(t, got, "b-c")
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, search.Similarity("Schmidt", "schmidt"), 1e-9)
	// 6 shared of 9 distinct trigrams
	assert.InDelta(t, 6.0/9.0, search.Similarity("Schmidt", "Schmid"), 1e-9)
	assert.Zero(t, search.Similarity("", "Schmidt"))
	assert.Less(t, search.Similarity("Schmidt", "Meyer"), search.DefaultThreshold)
}

func TestUnaccent(t *testing.T) {
	assert.Equal(t, "Muller", search.Unaccent("Müller"))
	assert.Equal(t, "Strasse", search.Unaccent("Straße"))
	assert.Equal(t, "Jose Garcia", search.Unaccent("José García"))
}

func TestSimilarity_DiacriticsAfterUnaccent(t *testing.T) {
	a := search.Unaccent("Müller")
	b := search.Unaccent("Muller")

	assert.InDelta(t, 1.0, search.Similarity(a, b), 1e-9)
}

func TestTrigramWhere(t *testing.T) {
	clause, args := search.NewTrigram().Where("schmid", "l.first_name", "l.last_name")

	assert.Equal(t,
		"(similarity(unaccent(lower(l.first_name)), unaccent(lower(?))) >= ? OR "+
			"similarity(unaccent(lower(l.last_name)), unaccent(lower(?))) >= ?)",
		clause)
	assert.Equal(t, []any{"schmid", 0.3, "schmid", 0.3}, args)
}

func TestSubstringWhere(t *testing.T) {
	clause, args := search.Substring{}.Where("50%_Sch", "l.first_name", "l.last_name")

	assert.Equal(t, `(fold_case(l.first_name) LIKE ? ESCAPE '\' OR fold_case(l.last_name) LIKE ? ESCAPE '\')`, clause)
	assert.Equal(t, []any{`%50\%\_sch%`, `%50\%\_sch%`}, args)
}

func TestSubstringWhere_NonASCII(t *testing.T) {
	_, args := search.Substring{}.Where("ÖZDEMIR", "l.last_name")

	assert.Equal(t, []any{"%özdemir%"}, args)
}

func TestFoldCase(t *testing.T) {
	assert.Equal(t, "özdemir", search.FoldCase("Özdemir"))
	assert.Equal(t, "élodie", search.FoldCase("ÉLODIE"))
}

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"Anna", "Schmidt"}, search.Terms("  Anna \t Schmidt "))
	assert.Empty(t, search.Terms("   "))
}

func TestMatcherNames(t *testing.T) {
	assert.Equal(t, "trigram", search.NewTrigram().Name())
	assert.Equal(t, "substring", search.Substring{}.Name())
}
