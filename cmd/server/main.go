package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/feriaverde/marketplace/internal"
	"github.com/feriaverde/marketplace/internal/billing"
	"github.com/feriaverde/marketplace/internal/events"
	"github.com/feriaverde/marketplace/internal/handler"
	"github.com/feriaverde/marketplace/internal/middleware"
	"github.com/feriaverde/marketplace/internal/postgres"
	"github.com/feriaverde/marketplace/internal/router"
	"github.com/feriaverde/marketplace/internal/service"
	"github.com/feriaverde/marketplace/internal/telemetry"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	logger.Info().Msg("connecting to database")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info().Msg("running database migrations")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)

	billingProvider, err := billing.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize billing provider: %w", err)
	}

	logger.Info().Str("url", cfg.NatsUrl).Msg("connecting to nats")
	natsConn, err := events.Connect(cfg.NatsUrl)
	if err != nil {
		return fmt.Errorf("nats connection failed: %w", err)
	}
	defer natsConn.Close()
	publisher := events.NewPublisher(natsConn)

	businessMetrics := telemetry.NewBusinessMetrics("feriaverde")

	catalogService, err := service.NewCatalogService(store)
	if err != nil {
		return fmt.Errorf("failed to initialize catalog service: %w", err)
	}

	cartService, err := service.NewCartService(store, businessMetrics)
	if err != nil {
		return fmt.Errorf("failed to initialize cart service: %w", err)
	}

	checkoutService, err := service.NewCheckoutService(store, billingProvider, publisher, businessMetrics, service.CheckoutConfig{
		Currency:   cfg.Checkout.Currency,
		SuccessURL: cfg.Checkout.SuccessURL,
		CancelURL:  cfg.Checkout.CancelURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize checkout service: %w", err)
	}

	httpMetrics := middleware.NewMetrics("feriaverde")

	r := router.New(
		middleware.RequestID,
		middleware.RequestLogger{Logger: logger}.Middleware,
		middleware.Recover(logger),
		httpMetrics.Middleware,
	)

	// Metrics endpoint; protect via firewall in production.
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		httpMetrics.Handler().ServeHTTP(w, req)
	})

	handler.Register(r, handler.Deps{
		Catalog:       catalogService,
		Carts:         cartService,
		Checkout:      checkoutService,
		Provider:      billingProvider,
		Metrics:       businessMetrics,
		Logger:        logger,
		SecureCookies: cfg.SecureCookies,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("address", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
