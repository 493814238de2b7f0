package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	VerifyPath  = "/api/paystack-verify"
	SandboxPath = "/sandbox/paystack"
)

type RouterConfig struct {
	RequestTimeout  time.Duration
	AllowedOrigins  []string
	SecureCookies   bool
	AdminJWTSecret  []byte
	VerifyRateLimit int
	// Sandbox, when set, is served under SandboxPath.
	Sandbox http.Handler
}

type Handlers struct {
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Verify   *VerifyHandler
	Orders   *OrdersHandler
}

func NewRouter(cfg RouterConfig, h Handlers, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(log))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// method check happens in the handler so non-POST gets a JSON 405
	limiter := NewRateLimiter(cfg.VerifyRateLimit)
	r.Handle(VerifyPath, limiter.Limit(h.Verify))

	if cfg.Sandbox != nil {
		r.Mount(SandboxPath, http.StripPrefix(SandboxPath, cfg.Sandbox))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(cfg.SecureCookies))
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.GetCart)
				r.Delete("/", h.Cart.ClearCart)
				r.Post("/items", h.Cart.AddItem)
				r.Delete("/items/{productId}", h.Cart.RemoveItem)
			})
			r.Post("/checkout", h.Checkout.Checkout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminJWTSecret))
			r.Get("/orders", h.Orders.ListOrders)
		})
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler(r)

	return otelhttp.NewHandler(corsHandler, "storefront")
}
