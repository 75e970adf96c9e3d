package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tushank99/mern-ecommerce/internal/domain"
	"github.com/tushank99/mern-ecommerce/internal/event"
	"github.com/tushank99/mern-ecommerce/internal/repository"
	apperrors "github.com/tushank99/mern-ecommerce/pkg/errors"
)

// Review rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// ErrProductNotFound returns the review subsystem's product-missing error.
// The message matches the storefront's shopper-facing copy.
func ErrProductNotFound() *apperrors.AppError {
	return apperrors.New("PRODUCT_NOT_FOUND", "Product not found", http.StatusNotFound, apperrors.ErrNotFound)
}

// ErrReviewNotFound returns the error for a missing review.
func ErrReviewNotFound(id string) *apperrors.AppError {
	return apperrors.New("REVIEW_NOT_FOUND", fmt.Sprintf("review with id %s not found", id), http.StatusNotFound, apperrors.ErrNotFound)
}

// ErrAlreadyReviewed returns the one-review-per-user violation error.
func ErrAlreadyReviewed() *apperrors.AppError {
	return apperrors.New("ALREADY_REVIEWED", "You have already reviewed this product", http.StatusConflict, apperrors.ErrAlreadyExists)
}

// ErrNotPurchased returns the purchase-gate violation error.
func ErrNotPurchased() *apperrors.AppError {
	return apperrors.New("NOT_PURCHASED", "Purchase this product to write a review", http.StatusForbidden, apperrors.ErrForbidden)
}

// ReviewService implements the purchase-gated review and rating logic.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		products: products,
		orders:   orders,
		producer: producer,
		logger:   logger,
	}
}

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	ProductID string
	UserID    string
	Author    string
	Rating    int
	Title     string
	Comment   string
}

// CanReview checks whether the user may review the product. The checks run
// in a fixed order and the first failure wins: product existence, then the
// one-review-per-user rule, then the paid-purchase gate. The check is
// read-only, so two calls in a row give the same answer.
func (s *ReviewService) CanReview(ctx context.Context, productID, userID string) (*domain.Eligibility, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if apperrors.HTTPStatus(err) == http.StatusNotFound {
			return &domain.Eligibility{Eligible: false, Reason: domain.ReasonProductNotFound}, nil
		}
		return nil, fmt.Errorf("check product exists: %w", err)
	}

	reviewed, err := s.reviews.ExistsForUser(ctx, productID, userID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if reviewed {
		return &domain.Eligibility{Eligible: false, Reason: domain.ReasonAlreadyReviewed}, nil
	}

	purchased, err := s.orders.HasPaidOrder(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("check paid order: %w", err)
	}
	if !purchased {
		return &domain.Eligibility{Eligible: false, Reason: domain.ReasonNotPurchased}, nil
	}

	return &domain.Eligibility{Eligible: true, Reason: domain.ReasonOK}, nil
}

// SubmitReview validates and stores a review, updating the product's
// aggregate rating atomically with the insert. Input validation happens
// before any reads so an invalid submission never touches stored state.
func (s *ReviewService) SubmitReview(ctx context.Context, input *SubmitReviewInput) (*domain.Review, error) {
	if input.Rating < MinRating || input.Rating > MaxRating {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	}

	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return nil, apperrors.InvalidInput("comment must not be empty")
	}

	eligibility, err := s.CanReview(ctx, input.ProductID, input.UserID)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		switch eligibility.Reason {
		case domain.ReasonProductNotFound:
			return nil, ErrProductNotFound()
		case domain.ReasonAlreadyReviewed:
			return nil, ErrAlreadyReviewed()
		default:
			return nil, ErrNotPurchased()
		}
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:                 uuid.New().String(),
		ProductID:          input.ProductID,
		UserID:             input.UserID,
		Author:             input.Author,
		Rating:             input.Rating,
		Title:              strings.TrimSpace(input.Title),
		Comment:            comment,
		IsVerifiedPurchase: true,
		HelpfulVotes:       0,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		// A concurrent submission can slip past the eligibility check;
		// the unique index reports it as already-exists.
		if apperrors.HTTPStatus(err) == http.StatusConflict {
			return nil, ErrAlreadyReviewed()
		}
		if apperrors.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrProductNotFound()
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	summary, err := s.reviews.GetSummary(ctx, input.ProductID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load rating summary after review",
			slog.String("product_id", input.ProductID),
			slog.String("error", err.Error()),
		)
		summary = &domain.RatingSummary{}
	}

	if err := s.producer.PublishReviewCreated(ctx, review, *summary); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// ListReviews returns a product's reviews newest-first with its stored
// aggregate rating.
func (s *ReviewService) ListReviews(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, *domain.RatingSummary, error) {
	summary, err := s.reviews.GetSummary(ctx, productID)
	if err != nil {
		if apperrors.HTTPStatus(err) == http.StatusNotFound {
			return nil, 0, nil, ErrProductNotFound()
		}
		return nil, 0, nil, fmt.Errorf("get rating summary: %w", err)
	}

	reviews, total, err := s.reviews.ListByProductID(ctx, productID, page, perPage)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, total, summary, nil
}

// MarkHelpful adds one helpful vote to a review and returns the new count.
// Votes are not deduplicated: each call counts.
func (s *ReviewService) MarkHelpful(ctx context.Context, productID, reviewID string) (int, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if apperrors.HTTPStatus(err) == http.StatusNotFound {
			return 0, ErrProductNotFound()
		}
		return 0, fmt.Errorf("check product exists: %w", err)
	}

	votes, err := s.reviews.IncrementHelpfulVotes(ctx, productID, reviewID)
	if err != nil {
		if apperrors.HTTPStatus(err) == http.StatusNotFound {
			return 0, ErrReviewNotFound(reviewID)
		}
		return 0, fmt.Errorf("increment helpful votes: %w", err)
	}

	if err := s.producer.PublishReviewHelpful(ctx, productID, reviewID, votes); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.helpful event",
			slog.String("review_id", reviewID),
			slog.String("error", err.Error()),
		)
	}

	return votes, nil
}
