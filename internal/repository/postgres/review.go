package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tushank99/mern-ecommerce/internal/domain"
	"github.com/tushank99/mern-ecommerce/pkg/database"
	apperrors "github.com/tushank99/mern-ecommerce/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create appends a review and recomputes the product's aggregate rating in
// one transaction. The product row is locked first, serializing concurrent
// submissions for the same product, so the stored aggregates always equal a
// from-scratch recompute over the committed review rows.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin review transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var priorRating float64
	err = tx.QueryRow(ctx,
		`SELECT rating FROM products WHERE id = $1 FOR UPDATE`,
		review.ProductID,
	).Scan(&priorRating)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("product", review.ProductID)
		}
		return fmt.Errorf("lock product row: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO product_reviews (id, product_id, user_id, author, rating, title, comment, is_verified_purchase, helpful_votes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		review.ID,
		review.ProductID,
		review.UserID,
		review.Author,
		review.Rating,
		review.Title,
		review.Comment,
		review.IsVerifiedPurchase,
		review.HelpfulVotes,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("review", "user_id", review.UserID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT rating FROM product_reviews WHERE product_id = $1 ORDER BY created_at, id`,
		review.ProductID,
	)
	if err != nil {
		return fmt.Errorf("load review ratings: %w", err)
	}

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			rows.Close()
			return fmt.Errorf("scan review rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate review ratings: %w", err)
	}

	summary := domain.RecomputeRating(ratings, priorRating)

	_, err = tx.Exec(ctx, `
		UPDATE products
		SET rating = $2, num_reviews = $3, updated_at = $4
		WHERE id = $1`,
		review.ProductID,
		summary.Rating,
		summary.NumReviews,
		review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product aggregates: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit review transaction: %w", err)
	}

	return nil
}

// ListByProductID returns paginated reviews for a product, newest first,
// along with the total count.
func (r *ReviewRepository) ListByProductID(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := `
		SELECT id, product_id, user_id, author, rating, title, comment, is_verified_purchase, helpful_votes, created_at, updated_at,
		       count(*) OVER() AS total_count
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var rv domain.Review

		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.UserID,
			&rv.Author,
			&rv.Rating,
			&rv.Title,
			&rv.Comment,
			&rv.IsVerifiedPurchase,
			&rv.HelpfulVotes,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}

		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// ExistsForUser reports whether the user already reviewed the product.
func (r *ReviewRepository) ExistsForUser(ctx context.Context, productID, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM product_reviews WHERE product_id = $1 AND user_id = $2)`,
		productID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check existing review: %w", err)
	}
	return exists, nil
}

// GetSummary returns the stored aggregate rating and review count for a product.
func (r *ReviewRepository) GetSummary(ctx context.Context, productID string) (*domain.RatingSummary, error) {
	var summary domain.RatingSummary
	err := r.pool.QueryRow(ctx,
		`SELECT rating, num_reviews FROM products WHERE id = $1`,
		productID,
	).Scan(&summary.Rating, &summary.NumReviews)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("get rating summary: %w", err)
	}
	return &summary, nil
}

// IncrementHelpfulVotes adds exactly one helpful vote to a review and
// returns the new count. Aggregate rating fields are untouched.
func (r *ReviewRepository) IncrementHelpfulVotes(ctx context.Context, productID, reviewID string) (int, error) {
	var votes int
	err := r.pool.QueryRow(ctx, `
		UPDATE product_reviews
		SET helpful_votes = helpful_votes + 1, updated_at = now()
		WHERE id = $1 AND product_id = $2
		RETURNING helpful_votes`,
		reviewID, productID,
	).Scan(&votes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NotFound("review", reviewID)
		}
		return 0, fmt.Errorf("increment helpful votes: %w", err)
	}
	return votes, nil
}
