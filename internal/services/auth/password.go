// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"fmt"
	"strings"
	"unicode"
)

// similarityLimit is the share of a password that may be taken from the username.
const similarityLimit = 0.7

// PasswordPolicy decides which administrator passwords are acceptable.
type PasswordPolicy struct {
	MinLength        int
	RequireMixedCase bool
	RequireDigit     bool
	RequireSymbol    bool
	RejectSimilar    bool // reject passwords close to the username
}

// DefaultPasswordPolicy asks for long passphrases instead of character soup.
func DefaultPasswordPolicy() *PasswordPolicy {
	return &PasswordPolicy{MinLength: 12, RejectSimilar: true}
}

// Problem is one unmet password requirement.
type Problem struct {
	Code    string
	Message string
}

// PasswordError lists every requirement a password failed.
type PasswordError struct {
	Problems []Problem
}

func (e *PasswordError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Message
	}
	return "weak password: " + strings.Join(msgs, " ")
}

// Check returns a *PasswordError when password violates the policy.
func (p *PasswordPolicy) Check(password, username string) error {
	var problems []Problem
	fail := func(code, format string, args ...any) {
		problems = append(problems, Problem{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if n := len([]rune(password)); n < p.MinLength {
		fail("min_length", "Use at least %d characters, not %d.", p.MinLength, n)
	}

	var upper, lower, digit, symbol, other bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		default:
			other = true
		}
	}

	if p.RequireMixedCase && !(upper && lower) {
		fail("mixed_case", "Mix upper and lower case letters.")
	}
	if p.RequireDigit && !digit {
		fail("no_digit", "Add a digit.")
	}
	if p.RequireSymbol && !symbol {
		fail("no_symbol", "Add a punctuation character or symbol.")
	}
	if password != "" && digit && !upper && !lower && !symbol && !other {
		fail("numeric", "Do not use only digits.")
	}
	if p.RejectSimilar && similarTo(password, username) {
		fail("too_similar", "Do not build the password from the username.")
	}

	if len(problems) == 0 {
		return nil
	}
	return &PasswordError{Problems: problems}
}

// Requirements describes the policy for command help texts.
func (p *PasswordPolicy) Requirements() []string {
	reqs := []string{fmt.Sprintf("at least %d characters", p.MinLength)}
	if p.RequireMixedCase {
		reqs = append(reqs, "upper and lower case")
	}
	if p.RequireDigit {
		reqs = append(reqs, "a digit")
	}
	if p.RequireSymbol {
		reqs = append(reqs, "a symbol")
	}
	reqs = append(reqs, "not only digits")
	if p.RejectSimilar {
		reqs = append(reqs, "unlike the username")
	}
	return reqs
}

func similarTo(password, username string) bool {
	if username == "" || password == "" {
		return false
	}
	pw, name := strings.ToLower(password), strings.ToLower(username)
	if strings.Contains(pw, name) || strings.Contains(name, pw) {
		return true
	}
	return similarity(pw, name) > similarityLimit
}

// similarity is the longest common subsequence relative to the longer input.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return float64(lcs(a, b)) / float64(max(len(a), len(b)))
}

func lcs(a, b string) int {
	row := make([]int, len(b)+1)
	for i := range len(a) {
		diag := 0
		for j := range len(b) {
			up := row[j+1]
			if a[i] == b[j] {
				row[j+1] = diag + 1
			} else {
				row[j+1] = max(row[j+1], row[j])
			}
			diag = up
		}
	}
	return row[len(b)]
}
