package validation_test

import (
	"testing"

	"github.com/GoArmGo/foodgram/internal/apperrors"
	"github.com/GoArmGo/foodgram/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	ID     int64 `json:"id" validate:"gt=0"`
	Amount int   `json:"amount" validate:"gte=1,lte=32767"`
}

type request struct {
	Name        string  `json:"name" validate:"required,max=10"`
	CookingTime int     `json:"cooking_time" validate:"gte=1,lte=32767"`
	Tags        []int64 `json:"tags" validate:"min=1"`
	Lines       []line  `json:"ingredients" validate:"min=1,dive"`
}

func valid() request {
	return request{Name: "soup", CookingTime: 5, Tags: []int64{1}, Lines: []line{{ID: 1, Amount: 2}}}
}

func TestValidator_Valid(t *testing.T) {
	assert.NoError(t, validation.New().Validate(valid()))
}

func TestValidator_FieldDetails(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*request)
		field  string
		msg    string
	}{
		{"missing name", func(r *request) { r.Name = "" }, "name", "is required"},
		{"long name", func(r *request) { r.Name = "abcdefghijk" }, "name", "must not exceed 10 characters"},
		{"zero cooking time", func(r *request) { r.CookingTime = 0 }, "cooking_time", "must be greater than or equal to 1"},
		{"cooking time too large", func(r *request) { r.CookingTime = 32768 }, "cooking_time", "must be less than or equal to 32767"},
		{"no tags", func(r *request) { r.Tags = []int64{} }, "tags", "must contain at least 1 items"},
		{"zero amount", func(r *request) { r.Lines[0].Amount = 0 }, "ingredients[0].amount", "must be greater than or equal to 1"},
		{"huge amount", func(r *request) { r.Lines[0].Amount = 3000000000 }, "ingredients[0].amount", "must be less than or equal to 32767"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)

			err := validation.New().Validate(req)
			require.ErrorIs(t, err, apperrors.ErrValidation)

			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			details, ok := appErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.msg, details[tt.field])
		})
	}
}
