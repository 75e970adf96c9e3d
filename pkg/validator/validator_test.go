package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewPayload struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment" validate:"required"`
	ReviewID string `json:"review_id" validate:"omitempty,uuid"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(reviewPayload{Rating: 5, Comment: "great"})
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(reviewPayload{Rating: 5})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["Comment"])
}

func TestValidate_MaxViolation(t *testing.T) {
	err := Validate(reviewPayload{Rating: 9, Comment: "ok"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be at most 5", valErr.Fields()["Rating"])
}

func TestValidate_UUIDViolation(t *testing.T) {
	err := Validate(reviewPayload{Rating: 3, Comment: "ok", ReviewID: "not-a-uuid"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be a valid UUID", valErr.Fields()["ReviewID"])
}

func TestValidationError_ErrorStringListsFields(t *testing.T) {
	err := Validate(reviewPayload{})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Error(), "Rating")
	assert.Contains(t, valErr.Error(), "Comment")
}
