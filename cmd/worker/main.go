// The worker consumes order-paid events and sends the notification emails:
// one to the buyer, one to each vendor with lines in the order.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feriaverde/marketplace/internal"
	"github.com/feriaverde/marketplace/internal/email"
	"github.com/feriaverde/marketplace/internal/events"
	"github.com/feriaverde/marketplace/internal/postgres"
	"github.com/feriaverde/marketplace/internal/telemetry"
	"github.com/feriaverde/marketplace/internal/worker"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)

	sender := email.NewSMTPSender(email.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     int(cfg.Email.Port),
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
	}, logger)
	notifier := email.NewOrderNotifier(sender, cfg.Email.From)

	logger.Info().Str("url", cfg.NatsUrl).Msg("connecting to nats")
	natsConn, err := events.Connect(cfg.NatsUrl)
	if err != nil {
		return fmt.Errorf("nats connection failed: %w", err)
	}
	defer natsConn.Close()

	businessMetrics := telemetry.NewBusinessMetrics("feriaverde")

	w := worker.NewWorker(store, notifier, businessMetrics, worker.Config{}, logger)

	if err := w.Start(ctx, natsConn); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("worker failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
