package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tushank99/mern-ecommerce/internal/service"
	"github.com/tushank99/mern-ecommerce/pkg/health"
	"github.com/tushank99/mern-ecommerce/pkg/middleware"
)

// RouterConfig carries the dependencies for building the HTTP router.
type RouterConfig struct {
	ProductService  *service.ProductService
	ReviewService   *service.ReviewService
	CategoryService *service.CategoryService
	OrderService    *service.OrderService
	HealthHandler   *health.Handler
	CORS            middleware.CORSConfig
	ServiceName     string
	Logger          *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	logger := cfg.Logger

	// Global middleware. Identity runs before RequestLogger so the
	// request-scoped logger carries the user id.
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Identity())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Operational endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	productHandler := NewProductHandler(cfg.ProductService, logger)
	reviewHandler := NewReviewHandler(cfg.ReviewService, logger)
	categoryHandler := NewCategoryHandler(cfg.CategoryService, logger)
	orderHandler := NewOrderHandler(cfg.OrderService, logger)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", productHandler.ListProducts)
		r.Get("/top", productHandler.TopRated)
		r.Get("/new", productHandler.Newest)
		r.Get("/{idOrSlug}", productHandler.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Use(middleware.RequireRole(middleware.RoleAdmin))

			r.Post("/", productHandler.CreateProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})
	})

	// Reviews are nested under products.
	r.Route("/api/v1/products/{productId}/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", reviewHandler.ListReviews)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/eligibility", reviewHandler.CheckEligibility)
			r.Post("/", reviewHandler.CreateReview)
			r.Post("/helpful", reviewHandler.MarkHelpful)
		})
	})

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", categoryHandler.ListCategories)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Use(middleware.RequireRole(middleware.RoleAdmin))

			r.Post("/", categoryHandler.CreateCategory)
		})
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.RequireUser)

		r.Post("/", orderHandler.CreateOrder)
		r.Get("/", orderHandler.ListMyOrders)
		r.Get("/{id}", orderHandler.GetOrder)
		r.Post("/{id}/pay", orderHandler.PayOrder)
	})

	return r
}
