// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salonpos/internal/domain/auth"
	"salonpos/internal/domain/catalog"
	"salonpos/internal/domain/ledger"
	"salonpos/internal/domain/pos"
	"salonpos/internal/domain/sales"
	"salonpos/internal/domain/session"
	"salonpos/internal/infrastructure/http/v1/handlers"
	"salonpos/internal/infrastructure/http/v1/middleware"
	"salonpos/internal/infrastructure/storage/postgres"
	"salonpos/pkg/logger"
)

// RouterConfig holds everything the HTTP surface depends on.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Sessions is the cash session manager
	Sessions *session.Service

	// Ledger serves movement listings
	Ledger *ledger.Service

	// Sales serves sale listings
	Sales *sales.Service

	// Engine commits tickets
	Engine *pos.Engine

	// Items and Appointments are the read-only collaborator views
	Items        catalog.ItemReader
	Appointments catalog.AppointmentReader
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Prometheus scrape endpoint (no auth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	baseHandler := handlers.NewBaseHandler()

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Public auth endpoint
		authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)
		v1.POST("/auth/login", authHandler.Login)

		// Everything else requires a valid operator token
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		// Cash sessions
		sessionHandler := handlers.NewSessionHandler(baseHandler, cfg.Sessions)
		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.POST("/open", sessionHandler.Open)
			sessionGroup.GET("/current", sessionHandler.Current)
			sessionGroup.GET("", sessionHandler.List)
			sessionGroup.GET("/:id", sessionHandler.Get)
			sessionGroup.POST("/:id/close", sessionHandler.Close)
			sessionGroup.POST("/:id/reopen", sessionHandler.Reopen)
		}

		// Movement ledger (read-only over HTTP)
		movementHandler := handlers.NewMovementHandler(baseHandler, cfg.Ledger)
		protected.GET("/movements", movementHandler.List)

		// POS ticket engine
		posHandler := handlers.NewPOSHandler(baseHandler, cfg.Engine)
		posGroup := protected.Group("/pos")
		{
			posGroup.POST("/quote", posHandler.Quote)
			posGroup.POST("/commit", posHandler.Commit)
			posGroup.POST("/withdrawals", posHandler.Withdraw)
		}

		// Catalog collaborator views
		catalogHandler := handlers.NewCatalogHandler(baseHandler, cfg.Items, cfg.Appointments, cfg.Sales)
		protected.GET("/catalog/services", catalogHandler.ListItems)
		protected.GET("/appointments", catalogHandler.ListAppointments)
		protected.GET("/appointments/:id", catalogHandler.GetAppointment)
		protected.GET("/sales", catalogHandler.ListSales)
	}

	return router
}
