package validation

import (
	"errors"
	"fmt"
	"testing"

	apperrors "playday/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string  `json:"name" validate:"required,min=2"`
	Email string  `json:"email" validate:"required,subscriber_email"`
	Price float64 `json:"price" validate:"gt=0"`
}

func TestStruct_TranslatesToJSONNames(t *testing.T) {
	err := New().Struct(&sample{Name: "a", Email: "nope", Price: 0})
	require.Error(t, err)

	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))

	details := errs.Details()["fields"].(map[string]any)
	assert.Equal(t, "must be at least 2 characters", details["name"])
	assert.Equal(t, "must be a valid email address", details["email"])
	assert.Equal(t, "must be greater than 0", details["price"])
}

func TestSubscriberEmail(t *testing.T) {
	v := New()
	tests := []struct {
		email string
		valid bool
	}{
		{"player@example.com", true},
		{"first.last-1@mail.example.org", true},
		{"no-at-sign.com", false},
		{"user@host", false},
		{"user@host.c", false},
		{"us er@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := v.Var("email", tt.email, "subscriber_email")
			assert.Equal(t, tt.valid, err == nil)
		})
	}
}

func TestCents(t *testing.T) {
	v := New()
	tests := []struct {
		amount float64
		valid  bool
	}{
		{10, true},
		{12.75, true},
		{0.1, true},
		{19.99, true},
		{0.004, false},
		{0.333, false},
		{12.755, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.amount), func(t *testing.T) {
			err := v.Var("hourly_price", tt.amount, "cents")
			assert.Equal(t, tt.valid, err == nil)
		})
	}
}

func TestCents_Message(t *testing.T) {
	err := New().Struct(&struct {
		Price float64 `json:"hourly_price" validate:"gt=0,cents"`
	}{Price: 0.004})
	require.Error(t, err)

	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, "must be a whole number of cents", errs.Details()["fields"].(map[string]any)["hourly_price"])
}

func TestAppend(t *testing.T) {
	err := Append(nil, "confirm_password", "must match password")
	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Len(t, errs, 1)

	err = Append(errs, "role", "is required")
	require.True(t, errors.As(err, &errs))
	assert.Len(t, errs, 2)

	other := errors.New("boom")
	assert.Equal(t, other, Append(other, "x", "y"))
}

func TestAppError(t *testing.T) {
	err := AppError("Field validation failed", New().Struct(&sample{}))
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Details, "fields")
}
