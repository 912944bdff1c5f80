package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	appamqp "fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/hub"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := backend.Open(ctx, backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
		PostgresURL:  cfg.PostgresURL,
	}, logger)
	if err != nil {
		logger.Error("Failed to open data backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	provider := newProvider(ctx, cfg, result, logger)

	ledgerHub := hub.New(result.Repo, logger)

	// AMQP publishing is optional: without a broker URL appends still
	// work, they just are not mirrored to the export queue.
	var events *appamqp.Client
	if cfg.AMQPURL != "" {
		events, err = appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer events.Close()
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP publishing disabled - no AMQP_URL provided")
	}

	ledger := services.NewLedgerService(ledgerHub, events, logger)

	srv := apphttp.NewServer(":"+cfg.Port, provider, ledger, result.Repo, logger, cfg.WriteTimeout)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
