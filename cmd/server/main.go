package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"stayledger/docs"
	"stayledger/internal/cache"
	"stayledger/internal/config"
	"stayledger/internal/db"
	"stayledger/internal/handler"
	"stayledger/internal/jobs"
	"stayledger/internal/logger"
	"stayledger/internal/metrics"
	"stayledger/internal/notify"
	"stayledger/internal/repository"
	"stayledger/internal/router"
	"stayledger/internal/service"
)

// @title StayLedger Payments API
// @version 1.0
// @description Booking payment settlement over card, PayPal and bank ledgers with refunds, receipts and reconciliation.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = l.Sync() }()
	zap.ReplaceGlobals(l)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		l.Fatal("Database init failed.", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}

	if cfg.ResetDB {
		l.Warn("RESET_DB=true detected, dropping all tables.")
		if err := db.Reset(gormDB); err != nil {
			l.Fatal("Failed to drop tables.", zap.Error(err))
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		l.Fatal("Auto-migrate failed.", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()
	if err := cacheClient.Ping(ctx); err != nil {
		l.Warn("Redis unavailable, running without cache.", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	var notifier notify.Notifier = notify.NewLogNotifier(l)
	if cfg.NATSURL != "" {
		natsNotifier, err := notify.NewNATSNotifier(cfg.NATSURL, l)
		if err != nil {
			l.Warn("NATS unavailable, payment events go to the log.", zap.String("url", cfg.NATSURL), zap.Error(err))
		} else {
			defer natsNotifier.Close()
			notifier = natsNotifier
		}
	}

	paymentMetrics := metrics.NewPayments()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		paymentMetrics,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize repositories
	ledgerRepo := repository.NewLedgerRepository(gormDB)
	paymentRepo := repository.NewPaymentRepository(gormDB)
	paymentLogRepo := repository.NewPaymentLogRepository(gormDB)
	bookingRepo := repository.NewBookingRepository(gormDB)
	reportRepo := repository.NewReconciliationRepository(gormDB)
	txManager := repository.NewTxManager(gormDB)

	// Initialize services
	strategies := service.NewStrategyFactory(ledgerRepo, txManager, l)
	ledgerService := service.NewLedgerService(ledgerRepo, txManager, cacheClient, l)
	bookingService := service.NewBookingService(bookingRepo)
	paymentService := service.NewPaymentService(paymentRepo, paymentLogRepo, ledgerRepo, txManager, cacheClient, notifier, paymentMetrics, l)
	defer paymentService.Close()
	reconcileService := service.NewReconcileService(ledgerRepo, paymentRepo, reportRepo, txManager, paymentMetrics, cfg.StalePendingAfter, l)

	if cfg.SeedOnStart {
		accounts, err := service.DefaultSeedAccounts()
		if err != nil {
			l.Fatal("Failed to load seed accounts.", zap.Error(err))
		}
		if _, err := ledgerService.Seed(ctx, accounts); err != nil {
			l.Fatal("Failed to seed ledgers.", zap.Error(err))
		}
	}

	jobs.RunReconcile(ctx, reconcileService, l)
	scheduler := jobs.NewScheduler(l)
	if err := scheduler.AddReconcile(cfg.ReconcileSchedule, reconcileService); err != nil {
		l.Fatal("Invalid reconcile schedule.", zap.String("schedule", cfg.ReconcileSchedule), zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		JWTSecret:      cfg.JWTSecret,
		Cache:          cacheClient,
		Gatherer:       registry,
		Logger:         l,
		PaymentHandler: handler.NewPaymentHandler(paymentService, strategies, bookingService, l),
		LedgerHandler:  handler.NewLedgerHandler(ledgerService),
		AdminHandler:   handler.NewAdminHandler(ledgerService, reconcileService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}
	l.Info("Swagger documentation available.", zap.String("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))

	go func() {
		addr := ":" + cfg.ServerPort
		l.Info("Starting server...", zap.String("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			l.Fatal("Server start failed.", zap.Error(err))
		}
	}()

	<-ctx.Done()
	l.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		l.Error("Server shutdown failed.", zap.Error(err))
	}
}
