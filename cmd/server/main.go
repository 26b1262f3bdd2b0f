// Package main is the entry point for the salonpos API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salonpos/internal/config"
	"salonpos/internal/core/policy"
	"salonpos/internal/domain/auth"
	"salonpos/internal/domain/ledger"
	"salonpos/internal/domain/pos"
	"salonpos/internal/domain/sales"
	"salonpos/internal/domain/session"
	v1 "salonpos/internal/infrastructure/http/v1"
	"salonpos/internal/infrastructure/http/v1/middleware"
	"salonpos/internal/infrastructure/storage/postgres"
	"salonpos/internal/infrastructure/storage/postgres/catalog_repo"
	"salonpos/internal/infrastructure/storage/postgres/ledger_repo"
	"salonpos/internal/infrastructure/storage/postgres/session_repo"
	"salonpos/pkg/logger"
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

	ctx := context.Background()
	log.Info("starting salonpos server")

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	sessionRepo := session_repo.NewRepo(txManager)
	movementRepo := ledger_repo.NewMovementRepo(txManager)
	saleRepo := ledger_repo.NewSaleRepo(txManager)
	itemRepo := catalog_repo.NewItemRepo(txManager)
	appointmentRepo := catalog_repo.NewAppointmentRepo(txManager)
	customerRepo := catalog_repo.NewCustomerRepo(txManager)
	operatorRepo := catalog_repo.NewOperatorRepo(txManager)

	// --- Audit and outbox ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}
	outbox := postgres.NewOutboxPublisher(txManager)

	// --- Deviation policy ---
	classifier, err := policy.NewDeviationClassifier(cfg.DeviationWarningExpr, cfg.DeviationCriticalExpr)
	if err != nil {
		log.Fatalw("invalid deviation rules", "error", err)
	}

	// --- Domain services ---
	ledgerService := ledger.NewService(movementRepo)
	salesService := sales.NewService(saleRepo)

	sessionService := session.NewService(session.Config{
		Repo:       sessionRepo,
		TxManager:  txManager,
		Totals:     ledgerService,
		Classifier: classifier,
		Audit:      auditService,
		Location:   cfg.Location(),
	})

	engine := pos.NewEngine(
		sessionService,
		ledgerService,
		salesService,
		customerRepo,
		outbox,
		txManager,
	)

	// --- Auth ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtConfig.TokenTTL = cfg.JWTTTL
	jwtService := auth.NewJWTService(jwtConfig)
	authService := auth.NewService(operatorRepo, jwtService)

	// --- Router ---
	middleware.InitMetrics()
	router := v1.NewRouter(v1.RouterConfig{
		Pool:         pool,
		Logger:       log,
		JWTValidator: jwtService,
		AuthService:  authService,
		Sessions:     sessionService,
		Ledger:       ledgerService,
		Sales:        salesService,
		Engine:       engine,
		Items:        itemRepo,
		Appointments: appointmentRepo,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port, "timezone", cfg.Timezone)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
