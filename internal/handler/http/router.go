package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/beanhouse/cafe-backend/internal/config"
	"github.com/beanhouse/cafe-backend/internal/service"
	"github.com/beanhouse/cafe-backend/pkg/health"
	"github.com/beanhouse/cafe-backend/pkg/middleware"
)

// Services bundles the services the router exposes.
type Services struct {
	Cart     *service.CartService
	Checkout *service.CheckoutService
	Orders   *service.OrderService
	Feedback *service.FeedbackService
}

// NewRouter creates a chi router with all API routes registered.
func NewRouter(
	svcs Services,
	healthHandler *health.Handler,
	tokenValidator middleware.TokenValidator,
	cfg *config.Config,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(corsCfg))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("cafe-backend"))
	r.Use(middleware.Tracing("cafe-backend"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	cartHandler := NewCartHandler(svcs.Cart, logger)
	checkoutHandler := NewCheckoutHandler(svcs.Checkout, logger)
	orderHandler := NewOrderHandler(svcs.Orders, logger)
	feedbackHandler := NewFeedbackHandler(svcs.Feedback, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public menu and ratings.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(60))

			r.Get("/products", cartHandler.ListMenu)
			r.Get("/products/{id}/rating", feedbackHandler.GetProductRating)
		})

		// Authenticated customer surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.Post("/cart/validate", cartHandler.ValidateCart)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(cfg.CheckoutRateLimitRPS, cfg.CheckoutRateBurst, logger))
				r.Post("/checkout", checkoutHandler.Checkout)
			})

			r.Get("/orders", orderHandler.ListOrders)
			r.Get("/orders/{id}", orderHandler.GetOrder)
			r.Post("/orders/{id}/feedback", feedbackHandler.SubmitOrderFeedback)
			r.Post("/products/{id}/reviews", feedbackHandler.SubmitProductReview)
			r.Get("/feedback", feedbackHandler.ListMyFeedback)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(service.RoleAdmin))
				r.Put("/orders/{id}/status", orderHandler.UpdateOrderStatus)
			})
		})
	})

	return r
}
