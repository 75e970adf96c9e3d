package repository

import (
	"context"
	"time"

	"github.com/tushank99/mern-ecommerce/internal/domain"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	CategoryID    *string
	Status        *string
	Keyword       *string
	MinPriceCents *int64
	MaxPriceCents *int64
	Page          int
	PerPage       int
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetBySlug retrieves a product by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// List returns products matching the given filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// TopRated returns the highest-rated products, best first.
	TopRated(ctx context.Context, limit int) ([]domain.Product, error)

	// Newest returns the most recently created products, newest first.
	Newest(ctx context.Context, limit int) ([]domain.Product, error)

	// Update modifies an existing product in the store.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context) ([]domain.Category, error)
}

// ReviewRepository defines persistence operations for product reviews.
//
// Create appends the review and recomputes the product's aggregate rating
// inside a single transaction that locks the product row, so the review
// sequence and the derived fields always change together. The
// (product_id, user_id) unique index is the storage-layer backstop for the
// duplicate-submission race; a violation surfaces as an already-exists error.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error

	// ListByProductID returns reviews newest-first with the total count.
	ListByProductID(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error)

	// ExistsForUser reports whether the user already reviewed the product.
	ExistsForUser(ctx context.Context, productID, userID string) (bool, error)

	// GetSummary returns the stored aggregate rating for a product.
	GetSummary(ctx context.Context, productID string) (*domain.RatingSummary, error)

	// IncrementHelpfulVotes adds one helpful vote to a review and returns
	// the new count.
	IncrementHelpfulVotes(ctx context.Context, productID, reviewID string) (int, error)
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUserID(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error)

	// MarkPaid records the payment gateway's capture result on the order.
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (*domain.Order, error)

	// HasPaidOrder reports whether the user has at least one paid order
	// containing the product. This is the purchase-verification signal
	// consumed by the review subsystem.
	HasPaidOrder(ctx context.Context, userID, productID string) (bool, error)
}

// ProductCache caches product lists that are expensive or hot (top-rated,
// newest). A cache miss returns (nil, nil).
type ProductCache interface {
	GetProducts(ctx context.Context, key string) ([]domain.Product, error)
	SetProducts(ctx context.Context, key string, products []domain.Product, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}
