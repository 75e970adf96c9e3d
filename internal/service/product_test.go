package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tushank99/mern-ecommerce/internal/domain"
	rediscache "github.com/tushank99/mern-ecommerce/internal/repository/redis"
	apperrors "github.com/tushank99/mern-ecommerce/pkg/errors"
)

func newTestProductService(repo *mockProductRepository, cache *mockProductCache) *ProductService {
	logger := newTestLogger()
	return NewProductService(repo, cache, newTestEventProducer(logger), logger)
}

func strPtr(s string) *string { return &s }

func TestCreateProduct_Success(t *testing.T) {
	repo := new(mockProductRepository)
	cache := new(mockProductCache)
	svc := newTestProductService(repo, cache)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)
	cache.On("Invalidate", mock.Anything, rediscache.KeyTopRated, rediscache.KeyNewest).Return(nil)

	input := &CreateProductInput{
		Name:         "Ceramic Mug (Blue)",
		Description:  "A mug.",
		Brand:        "Acme",
		PriceCents:   1499,
		Currency:     "usd",
		CountInStock: 10,
	}

	product, err := svc.CreateProduct(context.Background(), input)

	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, "ceramic-mug-blue", product.Slug)
	assert.Equal(t, domain.ProductStatusDraft, product.Status)
	assert.Equal(t, "USD", product.Currency)
	assert.Equal(t, 0.0, product.Rating)
	assert.Equal(t, 0, product.NumReviews)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCreateProduct_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateProductInput
	}{
		{"empty name", CreateProductInput{Name: "  ", PriceCents: 100, Currency: "USD"}},
		{"negative price", CreateProductInput{Name: "Mug", PriceCents: -1, Currency: "USD"}},
		{"bad currency", CreateProductInput{Name: "Mug", PriceCents: 100, Currency: "DOLLARS"}},
		{"negative stock", CreateProductInput{Name: "Mug", PriceCents: 100, Currency: "USD", CountInStock: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockProductRepository)
			cache := new(mockProductCache)
			svc := newTestProductService(repo, cache)

			product, err := svc.CreateProduct(context.Background(), &tt.input)

			assert.Nil(t, product)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestTopRated_CacheHit(t *testing.T) {
	repo := new(mockProductRepository)
	cache := new(mockProductCache)
	svc := newTestProductService(repo, cache)

	cached := make([]domain.Product, 8)
	for i := range cached {
		cached[i] = domain.Product{ID: string(rune('a' + i)), Rating: 5}
	}
	cache.On("GetProducts", mock.Anything, rediscache.KeyTopRated).Return(cached, nil)

	products, err := svc.TopRated(context.Background(), 8)

	require.NoError(t, err)
	assert.Len(t, products, 8)
	repo.AssertNotCalled(t, "TopRated", mock.Anything, mock.Anything)
}

func TestTopRated_CacheMissFallsBackToStore(t *testing.T) {
	repo := new(mockProductRepository)
	cache := new(mockProductCache)
	svc := newTestProductService(repo, cache)

	stored := []domain.Product{{ID: testProductID, Rating: 4.5}}
	cache.On("GetProducts", mock.Anything, rediscache.KeyTopRated).Return(nil, nil)
	repo.On("TopRated", mock.Anything, 8).Return(stored, nil)
	cache.On("SetProducts", mock.Anything, rediscache.KeyTopRated, stored, mock.AnythingOfType("time.Duration")).Return(nil)

	products, err := svc.TopRated(context.Background(), 8)

	require.NoError(t, err)
	assert.Equal(t, stored, products)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestNewest_CacheReadErrorIsNotFatal(t *testing.T) {
	repo := new(mockProductRepository)
	cache := new(mockProductCache)
	svc := newTestProductService(repo, cache)

	stored := []domain.Product{{ID: testProductID}}
	cache.On("GetProducts", mock.Anything, rediscache.KeyNewest).Return(nil, assert.AnError)
	repo.On("Newest", mock.Anything, 8).Return(stored, nil)
	cache.On("SetProducts", mock.Anything, rediscache.KeyNewest, stored, mock.AnythingOfType("time.Duration")).Return(nil)

	products, err := svc.Newest(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, stored, products)
}

func TestUpdateProduct_InvalidStatus(t *testing.T) {
	repo := new(mockProductRepository)
	cache := new(mockProductCache)
	svc := newTestProductService(repo, cache)

	repo.On("GetByID", mock.Anything, testProductID).Return(publishedProduct(), nil)

	product, err := svc.UpdateProduct(context.Background(), testProductID, &UpdateProductInput{
		Status: strPtr("deleted"),
	})

	assert.Nil(t, product)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateProduct_Success(t *testing.T) {
	repo := new(mockProductRepository)
	cache := new(mockProductCache)
	svc := newTestProductService(repo, cache)

	existing := publishedProduct()
	existing.Rating = 4.5
	existing.NumReviews = 12

	repo.On("GetByID", mock.Anything, testProductID).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)
	cache.On("Invalidate", mock.Anything, rediscache.KeyTopRated, rediscache.KeyNewest).Return(nil)

	newName := "Ceramic Mug v2"
	product, err := svc.UpdateProduct(context.Background(), testProductID, &UpdateProductInput{
		Name: &newName,
	})

	require.NoError(t, err)
	assert.Equal(t, "Ceramic Mug v2", product.Name)
	assert.Equal(t, "ceramic-mug-v2", product.Slug)
	// Aggregates are derived from reviews and survive catalog edits untouched.
	assert.Equal(t, 4.5, product.Rating)
	assert.Equal(t, 12, product.NumReviews)
	assert.True(t, product.UpdatedAt.After(time.Time{}))

	repo.AssertExpectations(t)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	repo := new(mockProductRepository)
	cache := new(mockProductCache)
	svc := newTestProductService(repo, cache)

	repo.On("Delete", mock.Anything, testProductID).Return(apperrors.NotFound("product", testProductID))

	err := svc.DeleteProduct(context.Background(), testProductID)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
