package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tushank99/mern-ecommerce/internal/domain"
	"github.com/tushank99/mern-ecommerce/internal/event"
	"github.com/tushank99/mern-ecommerce/internal/repository"
	apperrors "github.com/tushank99/mern-ecommerce/pkg/errors"
	"github.com/tushank99/mern-ecommerce/pkg/middleware"
)

// OrderService implements the business logic for order operations. Payment
// itself happens at an external gateway; this service only records its
// capture result, which in turn unlocks review eligibility.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// OrderItemInput is one line of a new order.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput holds the parameters for placing an order.
type CreateOrderInput struct {
	UserID string
	Items  []OrderItemInput
}

// CreateOrder places a new unpaid order. Item names and unit prices are
// snapshotted from the catalog at order time.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		Status:    domain.OrderStatusPending,
		IsPaid:    false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	seen := make(map[string]bool, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperrors.InvalidInput("item quantity must be positive")
		}
		if seen[item.ProductID] {
			return nil, apperrors.InvalidInput(fmt.Sprintf("duplicate product %s in order", item.ProductID))
		}
		seen[item.ProductID] = true

		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if apperrors.HTTPStatus(err) == http.StatusNotFound {
				return nil, ErrProductNotFound()
			}
			return nil, fmt.Errorf("load product for order: %w", err)
		}
		if product.Status != domain.ProductStatusPublished {
			return nil, apperrors.InvalidInput(fmt.Sprintf("product %s is not available", product.ID))
		}
		if product.CountInStock < item.Quantity {
			return nil, apperrors.New("OUT_OF_STOCK",
				fmt.Sprintf("product %s has only %d in stock", product.ID, product.CountInStock),
				http.StatusConflict, apperrors.ErrConflict)
		}

		order.Items = append(order.Items, domain.OrderItem{
			ID:             uuid.New().String(),
			OrderID:        order.ID,
			ProductID:      product.ID,
			Name:           product.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: product.PriceCents,
		})
		order.TotalCents += product.PriceCents * int64(item.Quantity)
		if order.Currency == "" {
			order.Currency = product.Currency
		}
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.Int64("total_cents", order.TotalCents),
		slog.Int("items", len(order.Items)),
	)

	return order, nil
}

// GetOrder retrieves an order. Non-admin callers may only read their own.
func (s *OrderService) GetOrder(ctx context.Context, id, userID, role string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if order.UserID != userID && role != middleware.RoleAdmin {
		// Hide the order's existence from other users.
		return nil, apperrors.NotFound("order", id)
	}

	return order, nil
}

// ListMyOrders returns the calling user's orders newest-first.
func (s *OrderService) ListMyOrders(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error) {
	orders, total, err := s.orders.ListByUserID(ctx, userID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// PayOrder records the payment gateway's capture result on the order. Once
// an order is paid its products become reviewable by the buyer. Paying an
// already-paid order is a no-op.
func (s *OrderService) PayOrder(ctx context.Context, id, userID, role string) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, id, userID, role)
	if err != nil {
		return nil, err
	}

	if order.IsPaid {
		return order, nil
	}

	paid, err := s.orders.MarkPaid(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	if err := s.producer.PublishOrderPaid(ctx, paid); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.paid event",
			slog.String("order_id", paid.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order paid",
		slog.String("order_id", paid.ID),
	)

	return paid, nil
}
