package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dataclinica/internal/caching"
	"dataclinica/internal/config"
	"dataclinica/internal/handlers"
	"dataclinica/internal/jobs"
	"dataclinica/internal/jobs/background"
	"dataclinica/internal/middleware"
	"dataclinica/internal/repositories"
	"dataclinica/internal/services"
	"dataclinica/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer cacheSvc.Close()

	minioSvc, err := services.NewMinioService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage client")
	}

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	supplyRepo := repositories.NewSupplyRepo(pool)
	movementRepo := repositories.NewMovementRepo(pool)
	alertRepo := repositories.NewAlertRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	auditLogsRepo := repositories.NewAuditLogsRepo(pool)

	// Services
	authSvc := services.NewAuthService(userRepo, tenantRepo, cacheSvc, cfg.JWTSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	rbacSvc := services.NewRBACService()
	supplySvc := services.NewSupplyService(supplyRepo, cacheSvc)
	stockSvc := services.NewStockService(supplyRepo, movementRepo, cacheSvc)
	alertSvc := services.NewAlertService(alertRepo)
	orderSvc := services.NewOrderService(orderRepo, supplyRepo, stockSvc)
	replenishmentSvc := services.NewReplenishmentService(supplyRepo, movementRepo, cfg.UsageWindowDays, cfg.MinReorderPoint)
	auditSvc := services.NewAuditLogsService(auditLogsRepo)
	reportSvc := services.NewReportService(tenantRepo, supplyRepo, movementRepo, minioSvc, cfg.MinioBucket)

	// Middleware
	rbacMiddleware := middleware.NewRBACMiddleware(rbacSvc)
	auditMiddleware := middleware.NewAuditMiddleware(auditSvc)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	supplyHandlers := handlers.NewSupplyHandlers(supplySvc)
	stockHandlers := handlers.NewStockHandlers(stockSvc)
	replenishmentHandlers := handlers.NewReplenishmentHandlers(replenishmentSvc)
	alertHandlers := handlers.NewAlertHandlers(alertSvc)
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	reportHandlers := handlers.NewReportHandlers(reportSvc)
	auditHandlers := handlers.NewAuditLogsHandlers(auditSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background jobs
	alertMonitor := jobs.NewAlertMonitor(tenantRepo, supplyRepo, alertSvc)
	statsRefresher := jobs.NewStatsRefresher(tenantRepo, supplySvc)
	scheduler, err := background.NewJobScheduler(
		alertMonitor,
		statsRefresher,
		time.Duration(cfg.AlertMonitorMins)*time.Minute,
		time.Duration(cfg.StatsRefreshMins)*time.Minute,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create job scheduler")
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop job scheduler")
		}
	}()

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.Health)
	e.GET("/health/ready", healthHandlers.Ready)
	e.GET("/health/detailed", healthHandlers.Detailed)

	v1 := e.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)

	protected := v1.Group("")
	protected.Use(middleware.JWTConfig(cfg.JWTSecret), middleware.LoadIdentity())

	// Supply catalog
	supplies := protected.Group("/supplies", auditMiddleware.AuditMutations("supply"))
	supplies.GET("", supplyHandlers.ListSupplies, rbacMiddleware.RequirePermission(services.PermSupplyRead))
	supplies.POST("", supplyHandlers.CreateSupply, rbacMiddleware.RequirePermission(services.PermSupplyWrite))
	supplies.GET("/stats", supplyHandlers.GetStats, rbacMiddleware.RequirePermission(services.PermSupplyRead))
	supplies.GET("/:id", supplyHandlers.GetSupply, rbacMiddleware.RequirePermission(services.PermSupplyRead))
	supplies.PUT("/:id", supplyHandlers.UpdateSupply, rbacMiddleware.RequirePermission(services.PermSupplyWrite))
	supplies.DELETE("/:id", supplyHandlers.DiscontinueSupply, rbacMiddleware.RequirePermission(services.PermSupplyWrite))

	// Stock movements
	supplies.PATCH("/:id/stock", stockHandlers.AdjustStock, rbacMiddleware.RequirePermission(services.PermStockMove))
	supplies.POST("/:id/consume", stockHandlers.ConsumeStock, rbacMiddleware.RequirePermission(services.PermStockMove))
	supplies.POST("/:id/receive", stockHandlers.ReceiveStock, rbacMiddleware.RequirePermission(services.PermStockMove))
	supplies.POST("/:id/transfer", stockHandlers.TransferStock, rbacMiddleware.RequirePermission(services.PermStockMove))
	supplies.GET("/:id/movements", stockHandlers.ListSupplyMovements, rbacMiddleware.RequirePermission(services.PermSupplyRead))
	supplies.GET("/movements", stockHandlers.ListMovements, rbacMiddleware.RequirePermission(services.PermSupplyRead))

	// Replenishment engine
	supplies.POST("/:id/reorder-point", replenishmentHandlers.CalculateReorderPoint, rbacMiddleware.RequirePermission(services.PermSupplyRead))
	supplies.GET("/:id/predict-stockout", replenishmentHandlers.PredictStockout, rbacMiddleware.RequirePermission(services.PermSupplyRead))
	supplies.GET("/:id/usage-analysis", replenishmentHandlers.UsageAnalysis, rbacMiddleware.RequirePermission(services.PermSupplyRead))

	// Alerts
	alerts := protected.Group("/supplies/alerts", auditMiddleware.AuditMutations("alert"))
	alerts.GET("", alertHandlers.ListAlerts, rbacMiddleware.RequirePermission(services.PermSupplyRead))
	alerts.GET("/unread-count", alertHandlers.UnreadCount, rbacMiddleware.RequirePermission(services.PermSupplyRead))
	alerts.PATCH("/:id/read", alertHandlers.MarkRead, rbacMiddleware.RequirePermission(services.PermAlertManage))
	alerts.PATCH("/:id/resolve", alertHandlers.ResolveAlert, rbacMiddleware.RequirePermission(services.PermAlertManage))
	alerts.DELETE("/:id", alertHandlers.DismissAlert, rbacMiddleware.RequirePermission(services.PermAlertManage))

	// Supply orders
	orders := protected.Group("/supplies/orders", auditMiddleware.AuditMutations("order"))
	orders.GET("", orderHandlers.ListOrders, rbacMiddleware.RequirePermission(services.PermOrderRead))
	orders.POST("", orderHandlers.CreateOrder, rbacMiddleware.RequirePermission(services.PermOrderWrite))
	orders.GET("/:id", orderHandlers.GetOrder, rbacMiddleware.RequirePermission(services.PermOrderRead))
	orders.PATCH("/:id/status", orderHandlers.UpdateOrderStatus, rbacMiddleware.RequirePermission(services.PermOrderApprove))
	orders.POST("/:id/receive", orderHandlers.ReceiveOrderItems, rbacMiddleware.RequirePermission(services.PermStockMove))

	// Reports
	reports := protected.Group("/supplies/reports", auditMiddleware.AuditMutations("report"))
	reports.POST("/usage", reportHandlers.GenerateUsageReport, rbacMiddleware.RequirePermission(services.PermReportRead))

	// Audit trail
	protected.GET("/audit-logs", auditHandlers.ListAuditLogs, rbacMiddleware.RequirePermission(services.PermAuditRead))
	protected.GET("/audit-logs/:entityType/:entityID", auditHandlers.GetEntityAuditLogs, rbacMiddleware.RequirePermission(services.PermAuditRead))

	// Start and wait for shutdown.
	go func() {
		log.Info().Str("version", version).Str("port", cfg.Port).Msg("dataclinica server starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
