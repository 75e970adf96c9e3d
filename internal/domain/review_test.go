package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeRating_Empty(t *testing.T) {
	summary := RecomputeRating(nil, 4.2)

	assert.Equal(t, 4.2, summary.Rating)
	assert.Equal(t, 0, summary.NumReviews)
}

func TestRecomputeRating_SingleReview(t *testing.T) {
	summary := RecomputeRating([]int{5}, 0)

	assert.Equal(t, 5.0, summary.Rating)
	assert.Equal(t, 1, summary.NumReviews)
}

func TestRecomputeRating_Mean(t *testing.T) {
	summary := RecomputeRating([]int{5, 5, 4}, 0)

	assert.InDelta(t, 4.6666, summary.Rating, 0.001)
	assert.Equal(t, 3, summary.NumReviews)
}

func TestRecomputeRating_AppendChangesMean(t *testing.T) {
	before := RecomputeRating([]int{5, 5, 4}, 0)
	after := RecomputeRating([]int{5, 5, 4, 3}, before.Rating)

	assert.Equal(t, 4.25, after.Rating)
	assert.Equal(t, 4, after.NumReviews)
}

func TestRecomputeRating_AllSame(t *testing.T) {
	summary := RecomputeRating([]int{3, 3, 3, 3}, 0)

	assert.Equal(t, 3.0, summary.Rating)
	assert.Equal(t, 4, summary.NumReviews)
}

func TestEligibility_Messages(t *testing.T) {
	tests := []struct {
		reason  EligibilityReason
		message string
	}{
		{ReasonOK, "You can review this product"},
		{ReasonProductNotFound, "Product not found"},
		{ReasonAlreadyReviewed, "You have already reviewed this product"},
		{ReasonNotPurchased, "Purchase this product to write a review"},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			e := Eligibility{Reason: tt.reason}
			assert.Equal(t, tt.message, e.Message())
		})
	}
}
