// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package validate wraps go-playground/validator with the award's rules
// and reports failures per form field.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"github.com/go-playground/validator/v10"
)

// FieldErrors maps form field names to i18n message keys.
type FieldErrors struct {
	// Err is an optional sentinel the failure stems from.
	Err    error
	Fields map[string]string
}

// NewFieldError returns a FieldErrors holding a single failure.
func NewFieldError(field, key string, cause error) *FieldErrors {
	return &FieldErrors{Fields: map[string]string{field: key}, Err: cause}
}

func (e *FieldErrors) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e.Fields[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *FieldErrors) Unwrap() error { return e.Err }

// Get returns the message key for field, or "".
func (e *FieldErrors) Get(field string) string {
	if e == nil {
		return ""
	}
	return e.Fields[field]
}

// Validator validates structs tagged with `validate`. Field names are
// taken from the `form` tag so errors line up with HTML inputs.
type Validator struct {
	v       *validator.Validate
	domains []string
}

// New creates a validator accepting email addresses from domains.
func New(domains []string) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	val := &Validator{v: v, domains: domains}

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("institutional", val.institutional)
	_ = v.RegisterValidation("faculty", faculty)

	return val
}

// Domains returns the accepted email domains.
func (val *Validator) Domains() []string {
	return slices.Clone(val.domains)
}

// Validate implements echo.Validator. Failures are returned as *FieldErrors.
func (val *Validator) Validate(i any) error {
	err := val.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate: %w", err)
	}

	fe := &FieldErrors{Fields: make(map[string]string, len(ve))}
	for _, e := range ve {
		// first failure per field wins
		if _, ok := fe.Fields[e.Field()]; !ok {
			fe.Fields[e.Field()] = "validation_" + e.Tag()
		}
	}
	return fe
}

// InstitutionalEmail reports whether addr belongs to one of the accepted domains.
func (val *Validator) InstitutionalEmail(addr string) bool {
	at := strings.LastIndexByte(addr, '@')
	if at < 1 {
		return false
	}
	return slices.Contains(val.domains, strings.ToLower(addr[at+1:]))
}

func (val *Validator) institutional(fl validator.FieldLevel) bool {
	return val.InstitutionalEmail(fl.Field().String())
}

// faculty accepts empty values; combine with required to demand one.
func faculty(fl validator.FieldLevel) bool {
	f := fl.Field().String()
	return f == "" || models.Faculty(f).Valid()
}
