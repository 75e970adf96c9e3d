package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tushank99/mern-ecommerce/internal/domain"
	pkgkafka "github.com/tushank99/mern-ecommerce/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicProductCreated = "storefront.product.created"
	TopicProductUpdated = "storefront.product.updated"
	TopicProductDeleted = "storefront.product.deleted"
	TopicReviewCreated  = "storefront.review.created"
	TopicReviewHelpful  = "storefront.review.helpful"
	TopicOrderCreated   = "storefront.order.created"
	TopicOrderPaid      = "storefront.order.paid"
)

// Aggregate type constants.
const (
	AggregateTypeProduct = "product"
	AggregateTypeReview  = "review"
	AggregateTypeOrder   = "order"
)

// Source identifier for events originating from this service.
const SourceStorefront = "storefront-api"

// ProductData is the payload for product.created and product.updated events.
type ProductData struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	Brand      string  `json:"brand"`
	CategoryID *string `json:"category_id,omitempty"`
	Status     string  `json:"status"`
	PriceCents int64   `json:"price_cents"`
	Currency   string  `json:"currency"`
}

// ProductDeletedData is the payload for a product.deleted event.
type ProductDeletedData struct {
	ID string `json:"id"`
}

// ReviewCreatedData is the payload for a review.created event. Rating and
// NumReviews are the product aggregates after this review was appended.
type ReviewCreatedData struct {
	ID         string  `json:"id"`
	ProductID  string  `json:"product_id"`
	UserID     string  `json:"user_id"`
	Rating     int     `json:"rating"`
	NewRating  float64 `json:"new_rating"`
	NumReviews int     `json:"num_reviews"`
}

// ReviewHelpfulData is the payload for a review.helpful event.
type ReviewHelpfulData struct {
	ReviewID     string `json:"review_id"`
	ProductID    string `json:"product_id"`
	HelpfulVotes int    `json:"helpful_votes"`
}

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	TotalCents int64  `json:"total_cents"`
	Currency   string `json:"currency"`
	ItemCount  int    `json:"item_count"`
}

// OrderPaidData is the payload for an order.paid event.
type OrderPaidData struct {
	ID     string    `json:"id"`
	UserID string    `json:"user_id"`
	PaidAt time.Time `json:"paid_at"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func productData(p *domain.Product) ProductData {
	return ProductData{
		ID:         p.ID,
		Name:       p.Name,
		Slug:       p.Slug,
		Brand:      p.Brand,
		CategoryID: p.CategoryID,
		Status:     p.Status,
		PriceCents: p.PriceCents,
		Currency:   p.Currency,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	event, err := pkgkafka.NewEvent(TopicProductCreated, product.ID, AggregateTypeProduct, SourceStorefront, productData(product))
	if err != nil {
		return fmt.Errorf("create product.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductCreated, event); err != nil {
		return fmt.Errorf("publish product.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.created event",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return nil
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	event, err := pkgkafka.NewEvent(TopicProductUpdated, product.ID, AggregateTypeProduct, SourceStorefront, productData(product))
	if err != nil {
		return fmt.Errorf("create product.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductUpdated, event); err != nil {
		return fmt.Errorf("publish product.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.updated event",
		slog.String("product_id", product.ID),
	)

	return nil
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id string) error {
	event, err := pkgkafka.NewEvent(TopicProductDeleted, id, AggregateTypeProduct, SourceStorefront, ProductDeletedData{ID: id})
	if err != nil {
		return fmt.Errorf("create product.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductDeleted, event); err != nil {
		return fmt.Errorf("publish product.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.deleted event",
		slog.String("product_id", id),
	)

	return nil
}

// PublishReviewCreated publishes a review.created event with the product's
// post-submission aggregates.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review, summary domain.RatingSummary) error {
	data := ReviewCreatedData{
		ID:         review.ID,
		ProductID:  review.ProductID,
		UserID:     review.UserID,
		Rating:     review.Rating,
		NewRating:  summary.Rating,
		NumReviews: summary.NumReviews,
	}

	event, err := pkgkafka.NewEvent(TopicReviewCreated, review.ID, AggregateTypeReview, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewCreated, event); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
	)

	return nil
}

// PublishReviewHelpful publishes a review.helpful event.
func (p *Producer) PublishReviewHelpful(ctx context.Context, productID, reviewID string, votes int) error {
	data := ReviewHelpfulData{
		ReviewID:     reviewID,
		ProductID:    productID,
		HelpfulVotes: votes,
	}

	event, err := pkgkafka.NewEvent(TopicReviewHelpful, reviewID, AggregateTypeReview, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create review.helpful event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewHelpful, event); err != nil {
		return fmt.Errorf("publish review.helpful event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.helpful event",
		slog.String("review_id", reviewID),
		slog.Int("helpful_votes", votes),
	)

	return nil
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		ID:         order.ID,
		UserID:     order.UserID,
		TotalCents: order.TotalCents,
		Currency:   order.Currency,
		ItemCount:  len(order.Items),
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
	)

	return nil
}

// PublishOrderPaid publishes an order.paid event.
func (p *Producer) PublishOrderPaid(ctx context.Context, order *domain.Order) error {
	data := OrderPaidData{
		ID:     order.ID,
		UserID: order.UserID,
	}
	if order.PaidAt != nil {
		data.PaidAt = *order.PaidAt
	}

	event, err := pkgkafka.NewEvent(TopicOrderPaid, order.ID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.paid event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderPaid, event); err != nil {
		return fmt.Errorf("publish order.paid event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.paid event",
		slog.String("order_id", order.ID),
	)

	return nil
}
