package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"repairhub/config"
	"repairhub/cron"
	"repairhub/database"
	"repairhub/handlers"
	"repairhub/routes"
	"repairhub/services/claim"
	"repairhub/services/feed"
	"repairhub/services/metrics"
	"repairhub/services/tasks"
	"repairhub/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	stores, err := database.OpenStores(rootCtx, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to open stores: %v", err)
	}
	defer stores.Close()

	healthChecks := map[string]utils.HealthCheck{stores.Driver: stores.Ping}

	// Rollup cache is optional; without Redis every rollup is recomputed.
	var rollupCache metrics.RollupCache
	if client := utils.InitCache(); client != nil {
		rollupCache = metrics.NewRedisRollupCache(client, config.AppConfig.RollupCacheTTL)
		healthChecks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		defer client.Close()
	}

	metricsService, err := metrics.NewDefaultMetricsService(stores.Requests, stores.Feedback, rollupCache, config.Location(), logger.Named("metrics"))
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	// Lifecycle events.
	var publisher tasks.EventPublisher = tasks.NopPublisher{}
	if config.AppConfig.EventsEnabled {
		queueOpt := utils.QueueRedisOpt()
		queueClient := asynq.NewClient(queueOpt)
		defer queueClient.Close()
		publisher = tasks.NewAsynqPublisher(queueClient)

		worker := cron.InitLifecycleWorker(queueOpt, metricsService, logger.Named("worker"))
		defer worker.Shutdown()
	}

	coordinator := claim.NewCoordinator(stores.Requests, publisher, logger.Named("claim"))
	coordinator.Invalidator = metricsService
	claimService, err := claim.NewDefaultClaimService(coordinator)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	feedService := feed.NewDefaultFeedService(stores.Requests, logger.Named("feed"))

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewRequestHandler(claimService, feedService),
		handlers.NewMetricsHandler(metricsService),
		logger,
	)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(rootCtx, healthChecks, 60*time.Second)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s (store=%s)...", srv.Addr, stores.Driver)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
