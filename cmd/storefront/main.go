package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Joebakid/Gudrix/internal/cart"
	"github.com/Joebakid/Gudrix/internal/catalog"
	"github.com/Joebakid/Gudrix/internal/checkout"
	"github.com/Joebakid/Gudrix/internal/config"
	h "github.com/Joebakid/Gudrix/internal/http"
	"github.com/Joebakid/Gudrix/internal/notify"
	"github.com/Joebakid/Gudrix/internal/paystack"
	"github.com/Joebakid/Gudrix/internal/pricing"
	"github.com/Joebakid/Gudrix/internal/repository"
	"github.com/Joebakid/Gudrix/internal/verification"
	"github.com/Joebakid/Gudrix/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	zl, err := logger.New("storefront")
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	cfg, err := config.Load()
	if err != nil {
		zl.Fatal("invalid configuration", zap.Error(err))
	}
	var sandbox *paystack.Sandbox
	if cfg.PaystackSandbox {
		sandbox = paystack.NewSandbox(paystack.SuccessRate(cfg.SandboxSuccessRate))
		cfg.PaystackBaseURL = "http://127.0.0.1:" + cfg.HTTPPort + h.SandboxPath
		if cfg.PaystackSecret == "" {
			cfg.PaystackSecret = "sk_sandbox"
		}
		zl.Warn("paystack sandbox enabled, payments are simulated",
			zap.String("base_url", cfg.PaystackBaseURL),
			zap.Int("success_rate", cfg.SandboxSuccessRate))
	}
	if cfg.PaystackSecret == "" {
		zl.Fatal("PAYSTACK_SECRET_KEY is required")
	}

	ctx := context.Background()

	products, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		zl.Fatal("failed to open catalog", zap.Error(err))
	}
	defer products.Close()
	if err := products.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		zl.Fatal("failed to migrate catalog", zap.Error(err))
	}

	orders, err := openOrderStore(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to open order store", zap.Error(err))
	}
	defer orders.Close()

	var provider paystack.TransactionVerifier = paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecret, cfg.ProviderTimeout, zl)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Warn("redis unreachable, verification cache will fall through", zap.Error(err))
		}
		provider = paystack.NewCachedVerifier(provider, paystack.NewRedisCache(rdb), zl)
	}

	notifier, closeNotifier := buildNotifier(cfg, zl)
	async := notify.NewAsync(notifier, 10*time.Second, zl)

	engine := pricing.NewEngine(cfg.ShippingTiers)
	guard := checkout.NewGuard(engine, cfg.MinOrderAmount, cfg.CurrencySymbol)
	sessions := cart.NewSessions(cfg.SessionTTL)
	defer sessions.Close()

	svc := verification.NewService(provider, orders, engine, async, cfg.Currency, cfg.RequestTimeout, zl)

	handlers := h.Handlers{
		Cart:     h.NewCartHandler(sessions, products, guard, cfg.RequestTimeout),
		Checkout: h.NewCheckoutHandler(sessions, guard, cfg.Currency),
		Verify:   h.NewVerifyHandler(svc, sessions, cfg.MaxRequestBodySize, cfg.RequestTimeout, zl),
		Orders:   h.NewOrdersHandler(orders, cfg.RequestTimeout),
	}
	routerCfg := h.RouterConfig{
		RequestTimeout:  cfg.RequestTimeout,
		AllowedOrigins:  cfg.AllowedOrigins,
		SecureCookies:   os.Getenv("SECURE_COOKIES") == "true",
		AdminJWTSecret:  []byte(cfg.AdminJWTSecret),
		VerifyRateLimit: cfg.VerifyRateLimit,
	}
	if sandbox != nil {
		routerCfg.Sandbox = sandbox
	}
	router := h.NewRouter(routerCfg, handlers, zl)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("storefront starting",
			zap.String("port", cfg.HTTPPort),
			zap.String("order_store", cfg.StoreDriver),
			zap.String("min_order", cfg.MinOrderAmount.String()),
			zap.Stringer("shipping_tiers", cfg.ShippingTiers))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	async.Wait()
	closeNotifier()

	zl.Info("server exited")
}

func openOrderStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (repository.OrderStore, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		db, err := repository.ConnectMongoDB(connectCtx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		store := repository.NewMongoOrderStore(db)
		if err := store.CreateIndexes(connectCtx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	case config.StorePostgres:
		store, err := repository.NewPostgresOrderStore(&cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := store.RunMigrations(&cfg.Postgres); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		zl.Warn("using in-memory order store, orders are lost on restart")
		return repository.NewMemoryOrderStore(), nil
	}
}

// buildNotifier prefers the event pipeline; direct email is the fallback.
func buildNotifier(cfg *config.Config, zl *zap.Logger) (notify.Notifier, func()) {
	switch {
	case len(cfg.KafkaBrokers) > 0:
		p := notify.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		return p, func() {
			if err := p.Close(); err != nil {
				zl.Warn("error closing kafka writer", zap.Error(err))
			}
		}
	case cfg.SMTP.Host != "":
		return notify.NewEmailNotifier(cfg.SMTP, cfg.CurrencySymbol), func() {}
	default:
		zl.Info("order notifications disabled")
		return notify.Noop{}, func() {}
	}
}
