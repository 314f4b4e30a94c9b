package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Title     string  `json:"title" validate:"required,min=1,max=5"`
	Rating    *int32  `json:"rating" validate:"omitnil,min=1,max=10"`
	Nickname  *string `json:"nickname" validate:"omitnil,min=2" errorMsg:"Nickname is too short"`
	ShortCode string  `validate:"omitempty,len=3"`
}

func ptr[T any](v T) *T { return &v }

func TestValidateStruct(t *testing.T) {
	v := New()
	t.Run("valid", func(t *testing.T) {
		err := ValidateStruct(v, testPayload{Title: "Dune", Rating: ptr[int32](10)})
		assert.NoError(t, err)
	})
	t.Run("missing title", func(t *testing.T) {
		err := ValidateStruct(v, testPayload{})
		vErr, ok := IsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "This field is required", vErr.Errors["title"])
		assert.Equal(t, "title: This field is required", vErr.Error())
	})
	t.Run("rating out of range", func(t *testing.T) {
		err := ValidateStruct(v, &testPayload{Title: "A", Rating: ptr[int32](11)})
		vErr, ok := IsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "The maximum value is 10", vErr.Errors["rating"])
	})
	t.Run("title too long", func(t *testing.T) {
		err := ValidateStruct(v, testPayload{Title: "abcdef"})
		vErr, ok := IsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "The maximum length is 5 characters", vErr.Errors["title"])
	})
	t.Run("custom message and snake case name", func(t *testing.T) {
		err := ValidateStruct(v, testPayload{Title: "A", Nickname: ptr("x"), ShortCode: "ab"})
		vErr, ok := IsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "Nickname is too short", vErr.Errors["nickname"])
		assert.Equal(t, "Length should be equal to 3", vErr.Errors["short_code"])
		assert.Equal(t, "nickname: Nickname is too short", vErr.Error())
	})
	t.Run("multibyte title counts characters", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(v, testPayload{Title: "Амели"}))
	})
}

func TestNewFieldError(t *testing.T) {
	err := error(NewFieldError("year", "must be a number"))
	wrapped := errors.Join(errors.New("decode"), err)
	vErr, ok := IsValidationError(wrapped)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"year": "must be a number"}, vErr.Errors)
	assert.Equal(t, "year: must be a number", vErr.Error())
}
