package domain

import (
	"time"
)

// Review is a product review submitted by a verified purchaser. Reviews are
// immutable after creation except for the helpful-vote counter.
type Review struct {
	ID                 string    `json:"id"`
	ProductID          string    `json:"product_id"`
	UserID             string    `json:"user_id"`
	Author             string    `json:"author"` // display name snapshot at submission time
	Rating             int       `json:"rating"`
	Title              string    `json:"title"`
	Comment            string    `json:"comment"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase"`
	HelpfulVotes       int       `json:"helpful_votes"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// RatingSummary holds the aggregate review statistics stored on a product.
type RatingSummary struct {
	Rating     float64 `json:"rating"`
	NumReviews int     `json:"num_reviews"`
}

// RecomputeRating derives the aggregate rating and review count from the
// full set of review ratings for a product. With no reviews the prior
// rating is kept, never a division by zero.
func RecomputeRating(ratings []int, prior float64) RatingSummary {
	if len(ratings) == 0 {
		return RatingSummary{Rating: prior, NumReviews: 0}
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}

	return RatingSummary{
		Rating:     float64(sum) / float64(len(ratings)),
		NumReviews: len(ratings),
	}
}

// EligibilityReason explains why a user may or may not review a product.
type EligibilityReason string

const (
	ReasonOK              EligibilityReason = "OK"
	ReasonProductNotFound EligibilityReason = "PRODUCT_NOT_FOUND"
	ReasonAlreadyReviewed EligibilityReason = "ALREADY_REVIEWED"
	ReasonNotPurchased    EligibilityReason = "NOT_PURCHASED"
)

// Eligibility is the result of a review eligibility check.
type Eligibility struct {
	Eligible bool              `json:"eligible"`
	Reason   EligibilityReason `json:"reason"`
}

// Message returns the human-readable reason string shown to shoppers.
func (e Eligibility) Message() string {
	switch e.Reason {
	case ReasonOK:
		return "You can review this product"
	case ReasonProductNotFound:
		return "Product not found"
	case ReasonAlreadyReviewed:
		return "You have already reviewed this product"
	case ReasonNotPurchased:
		return "Purchase this product to write a review"
	default:
		return string(e.Reason)
	}
}
