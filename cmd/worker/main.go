// Package main is the entry point for the salonpos background worker.
// It relays committed domain events from the transactional outbox.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"salonpos/internal/config"
	"salonpos/internal/infrastructure/storage/postgres"
	"salonpos/pkg/logger"
)

const (
	relayInterval = 5 * time.Second
	relayBatch    = 100
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting salonpos worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	relay := postgres.NewOutboxRelay(pool.Unwrap(), relayBatch, postgres.LogHandler{})
	worker := NewRelayWorker(relay, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// RelayWorker drains the outbox on a fixed interval.
type RelayWorker struct {
	relay *postgres.OutboxRelay
	log   *logger.Logger
}

func NewRelayWorker(relay *postgres.OutboxRelay, log *logger.Logger) *RelayWorker {
	return &RelayWorker{
		relay: relay,
		log:   log.WithComponent("outbox-relay"),
	}
}

// Run processes pending outbox messages until the context is cancelled.
func (w *RelayWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(relayInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			processed, err := w.relay.ProcessBatch(ctx)
			if err != nil {
				w.log.Warnw("outbox batch failed", "error", err)
				continue
			}
			if processed > 0 {
				w.log.Infow("outbox batch processed", "count", processed)
			}
		}
	}
}
