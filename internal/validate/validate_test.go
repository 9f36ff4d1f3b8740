// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package validate_test

import (
	"errors"
	"testing"

	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"codeberg.org/oliverandrich/teaching-award/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	Email   string         `form:"email" validate:"required,email,institutional"`
	Faculty models.Faculty `form:"faculty" validate:"faculty"`
	Reason  string         `form:"reason" validate:"required,max=10"`
}

func TestValidate_OK(t *testing.T) {
	v := validate.New([]string{"ovgu.de", "st.ovgu.de"})

	err := v.Validate(&form{Email: "max@st.ovgu.de", Faculty: models.FacultyFIN, Reason: "great"})

	assert.NoError(t, err)
}

func TestValidate_FieldErrors(t *testing.T) {
	v := validate.New([]string{"ovgu.de"})

	err := v.Validate(&form{Email: "max@gmail.com", Faculty: "XYZ", Reason: "far too long reason"})

	var fe *validate.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "validation_institutional", fe.Get("email"))
	assert.Equal(t, "validation_faculty", fe.Get("faculty"))
	assert.Equal(t, "validation_max", fe.Get("reason"))
	assert.Contains(t, err.Error(), "email: validation_institutional")
}

func TestValidate_Required(t *testing.T) {
	v := validate.New([]string{"ovgu.de"})

	err := v.Validate(&form{})

	var fe *validate.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "validation_required", fe.Get("email"))
	assert.Equal(t, "validation_required", fe.Get("reason"))
	// empty faculty is left to required
	assert.Empty(t, fe.Get("faculty"))
}

func TestInstitutionalEmail(t *testing.T) {
	v := validate.New([]string{"ovgu.de", "st.ovgu.de"})

	assert.True(t, v.InstitutionalEmail("max@ovgu.de"))
	assert.True(t, v.InstitutionalEmail("max@ST.OVGU.DE"))
	assert.False(t, v.InstitutionalEmail("max@cs.ovgu.de"))
	assert.False(t, v.InstitutionalEmail("max@ovgu.de.evil.com"))
	assert.False(t, v.InstitutionalEmail("@ovgu.de"))
	assert.False(t, v.InstitutionalEmail("ovgu.de"))
}

func TestFieldErrors_Unwrap(t *testing.T) {
	sentinel := errors.New("sentinel")

	err := validate.NewFieldError("email", "validation_duplicate", sentinel)

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "validation_duplicate", err.Get("email"))

	var nilErrs *validate.FieldErrors
	assert.Empty(t, nilErrs.Get("email"))
}

func TestDomains_ReturnsCopy(t *testing.T) {
	v := validate.New([]string{"ovgu.de"})

	d := v.Domains()
	d[0] = "evil.com"

	assert.Equal(t, []string{"ovgu.de"}, v.Domains())
}
