package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/events"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	m := metrics.New()
	bus := events.NewBus()
	bus.SubscribeAll(m.RecordChange)

	dashboardCache := cache.NewLRUCache[core.Dashboard](cfg.DashboardCacheSize, cfg.DashboardCacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	cacheManager.Register("dashboard", dashboardCache)
	cacheManager.StartCleanup(time.Minute)

	var (
		forwarder  *services.Forwarder
		amqpClient *amqp.Client
	)
	if cfg.AMQPEnabled() {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, "", "")
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		forwarder = services.NewForwarder(amqpClient, 0, logger)
		forwarder.Start(context.Background())
		bus.SubscribeAll(forwarder.Handle)
		logger.Info("Forwarding change events", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	finance := services.NewFinance(repo, services.Options{
		Bus:            bus,
		DashboardCache: dashboardCache,
		BackupDir:      cfg.BackupDir,
		Logger:         logger,
	})

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               cfg.Addr(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	}, finance, repo, m, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting fintrack server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	<-done

	cacheManager.Stop()
	if forwarder != nil {
		forwarder.Stop()
	}
	if amqpClient != nil {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", log.FieldError, err)
		}
	}
	if err := finance.Close(); err != nil {
		logger.Error("Failed to close database", log.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
