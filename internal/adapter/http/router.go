package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/creditdesk/internal/adapter/http/handler"
	"github.com/iho/creditdesk/internal/adapter/http/middleware"
	"github.com/iho/creditdesk/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	LedgerHandler    *handler.LedgerHandler
	RequestHandler   *handler.RequestHandler
	SweepHandler     *handler.SweepHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.Recoverer(cfg.Logger))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts and everything they own
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.AccountHandler.Get)
				r.Get("/overview", cfg.AccountHandler.Overview)
				r.Get("/balance", cfg.LedgerHandler.Balance)
				r.Post("/purchases", cfg.LedgerHandler.Purchase)
				r.Get("/transactions", cfg.LedgerHandler.History)
				r.Get("/consistency", cfg.LedgerHandler.Consistency)

				r.Route("/requests", func(r chi.Router) {
					r.Post("/", cfg.RequestHandler.Submit)
					r.Get("/", cfg.RequestHandler.List)
					r.Get("/{requestID}", cfg.RequestHandler.Get)
					r.Post("/{requestID}/cancel", cfg.RequestHandler.Cancel)
				})
			})
		})

		// Operator endpoints
		r.Get("/ledger/consistency", cfg.LedgerHandler.ConsistencyAll)
		r.Post("/sweep", cfg.SweepHandler.Trigger)
	})

	return r
}
