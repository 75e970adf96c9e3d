package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tushank99/mern-ecommerce/internal/domain"
	"github.com/tushank99/mern-ecommerce/internal/event"
	"github.com/tushank99/mern-ecommerce/internal/repository"
	rediscache "github.com/tushank99/mern-ecommerce/internal/repository/redis"
	apperrors "github.com/tushank99/mern-ecommerce/pkg/errors"
	"github.com/tushank99/mern-ecommerce/pkg/slug"
)

// TTL for cached hot product lists.
const productListCacheTTL = 5 * time.Minute

// Default list size for the top-rated and newest carousels.
const defaultCarouselSize = 8

// ProductService implements the business logic for catalog operations.
type ProductService struct {
	repo     repository.ProductRepository
	cache    repository.ProductCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, cache repository.ProductCache, producer *event.Producer, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		cache:    cache,
		producer: producer,
		logger:   logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name         string
	Description  string
	Brand        string
	CategoryID   *string
	PriceCents   int64
	Currency     string
	CountInStock int
}

// UpdateProductInput holds the parameters for updating a product. Nil fields
// are left unchanged. Rating and NumReviews are never updatable here; they
// only change through review submission.
type UpdateProductInput struct {
	Name         *string
	Description  *string
	Brand        *string
	CategoryID   *string
	Status       *string
	PriceCents   *int64
	Currency     *string
	CountInStock *int
}

// CreateProduct creates a new product in draft status.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.PriceCents < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if len(input.Currency) != 3 {
		return nil, apperrors.InvalidInput("currency must be a 3-letter ISO code")
	}
	if input.CountInStock < 0 {
		return nil, apperrors.InvalidInput("count in stock must not be negative")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Slug:         slug.Generate(input.Name),
		Description:  input.Description,
		Brand:        input.Brand,
		CategoryID:   input.CategoryID,
		Status:       domain.ProductStatusDraft,
		PriceCents:   input.PriceCents,
		Currency:     strings.ToUpper(input.Currency),
		CountInStock: input.CountInStock,
		Rating:       0,
		NumReviews:   0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.invalidateListCaches(ctx)

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// GetProductBySlug retrieves a product by its slug.
func (s *ProductService) GetProductBySlug(ctx context.Context, productSlug string) (*domain.Product, error) {
	product, err := s.repo.GetBySlug(ctx, productSlug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return product, nil
}

// ListProducts returns products matching the filter with the total count.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	if filter.Status != nil && !domain.IsValidStatus(*filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", *filter.Status))
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

// TopRated returns the highest-rated published products, served from cache
// when available.
func (s *ProductService) TopRated(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = defaultCarouselSize
	}
	return s.cachedList(ctx, rediscache.KeyTopRated, limit, s.repo.TopRated)
}

// Newest returns the most recently published products, served from cache
// when available.
func (s *ProductService) Newest(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = defaultCarouselSize
	}
	return s.cachedList(ctx, rediscache.KeyNewest, limit, s.repo.Newest)
}

func (s *ProductService) cachedList(ctx context.Context, key string, limit int, load func(context.Context, int) ([]domain.Product, error)) ([]domain.Product, error) {
	cached, err := s.cache.GetProducts(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "product list cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	if len(cached) >= limit {
		return cached[:limit], nil
	}

	products, err := load(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load product list: %w", err)
	}

	if err := s.cache.SetProducts(ctx, key, products, productListCacheTTL); err != nil {
		s.logger.WarnContext(ctx, "product list cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	return products, nil
}

// UpdateProduct applies a partial update to a product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.InvalidInput("product name must not be empty")
		}
		product.Name = *input.Name
		product.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Brand != nil {
		product.Brand = *input.Brand
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.Status != nil {
		if !domain.IsValidStatus(*input.Status) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", *input.Status))
		}
		product.Status = *input.Status
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, apperrors.InvalidInput("price must not be negative")
		}
		product.PriceCents = *input.PriceCents
	}
	if input.Currency != nil {
		if len(*input.Currency) != 3 {
			return nil, apperrors.InvalidInput("currency must be a 3-letter ISO code")
		}
		product.Currency = strings.ToUpper(*input.Currency)
	}
	if input.CountInStock != nil {
		if *input.CountInStock < 0 {
			return nil, apperrors.InvalidInput("count in stock must not be negative")
		}
		product.CountInStock = *input.CountInStock
	}

	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidateListCaches(ctx)

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product and its reviews.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.invalidateListCaches(ctx)

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

func (s *ProductService) invalidateListCaches(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, rediscache.KeyTopRated, rediscache.KeyNewest); err != nil {
		s.logger.WarnContext(ctx, "product list cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}
}
