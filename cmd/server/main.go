package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subcycle/internal/config"
	"subcycle/internal/database"
	"subcycle/internal/handlers"
	"subcycle/internal/i18n"
	"subcycle/internal/middleware"
	"subcycle/internal/repository"
	"subcycle/internal/scheduler"
	"subcycle/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	renewOnce := flag.Bool("renew-once", false, "Process due renewals once and exit")
	testNotify := flag.Bool("test-notify", false, "Send a test notification to NOTIFY_URLS and exit")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Initialize(cfg.DatabasePath, !cfg.IsProduction())
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Repositories
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	// Services
	categoryService := service.NewCategoryService(categoryRepo)
	renewalService := service.NewRenewalService()
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, categoryService, renewalService)

	var notifier service.RenewalNotifier
	if urls := cfg.NotificationURLs(); len(urls) > 0 {
		shoutrrrService := service.NewShoutrrrService(urls, cfg.NotifyLanguage, i18n.NewI18nService())
		if *testNotify {
			if err := shoutrrrService.SendTestNotification(); err != nil {
				logger.Error("test notification failed", "error", err)
				os.Exit(1)
			}
			logger.Info("test notification sent", "targets", len(urls))
			return
		}
		notifier = shoutrrrService
	} else if *testNotify {
		logger.Error("test notification failed", "error", service.ErrNotifierNotConfigured)
		os.Exit(1)
	}

	processor := service.NewRenewalProcessor(subscriptionRepo, notifier, cfg.RenewalWorkers, logger)
	renewalScheduler := scheduler.New(processor, cfg.RenewalSchedule, cfg.RenewalTimeout, logger)

	if *renewOnce {
		report, err := renewalScheduler.RunNow(context.Background())
		if err != nil {
			logger.Error("renewal run failed", "error", err)
			os.Exit(1)
		}
		logger.Info("renewal run finished", "renewed", report.Renewed, "failed", report.Failed)
		if report.Failed > 0 {
			os.Exit(2)
		}
		return
	}

	// Catch up on renewals missed while the server was down.
	if _, err := renewalScheduler.RunNow(context.Background()); err != nil {
		logger.Error("startup renewal run failed", "error", err)
	}
	if err := renewalScheduler.Start(); err != nil {
		logger.Error("failed to start renewal scheduler", "error", err)
		os.Exit(1)
	}

	// Handlers
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	renewalHandler := handlers.NewRenewalHandler(renewalScheduler)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.GET("/healthz", handlers.Health(db))

	rateLimiter := middleware.NewRateLimiter(cfg.APIRateLimit, cfg.APIRateBurst)
	defer rateLimiter.Stop()

	setupRoutes(router, rateLimiter, subscriptionHandler, categoryHandler, renewalHandler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("subcycle server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	select {
	case <-renewalScheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("renewal run still in progress at shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func setupRoutes(router *gin.Engine, rateLimiter *middleware.RateLimiter, subscriptionHandler *handlers.SubscriptionHandler, categoryHandler *handlers.CategoryHandler, renewalHandler *handlers.RenewalHandler) {
	v1 := router.Group("/api/v1")
	v1.Use(rateLimiter.Middleware())
	{
		v1.GET("/subscriptions", subscriptionHandler.ListSubscriptions)
		v1.POST("/subscriptions", subscriptionHandler.CreateSubscription)
		v1.GET("/subscriptions/:id", subscriptionHandler.GetSubscription)
		v1.PATCH("/subscriptions/:id", subscriptionHandler.UpdateSubscription)
		v1.PUT("/subscriptions/:id", subscriptionHandler.UpdateSubscription)
		v1.DELETE("/subscriptions/:id", subscriptionHandler.DeleteSubscription)

		v1.GET("/categories", categoryHandler.ListCategories)
		v1.POST("/categories", categoryHandler.CreateCategory)
		v1.PUT("/categories/:id", categoryHandler.UpdateCategory)
		v1.DELETE("/categories/:id", categoryHandler.DeleteCategory)

		v1.GET("/renewals/preview", renewalHandler.Preview)
		v1.POST("/renewals/run", renewalHandler.Run)
	}
}
