package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	appamqp "fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/export"
	"fintrack/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentExport})
	log.SetDefault(logger)

	logger.Info("Starting fintrack-export-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the export worker")
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

	writer, err := export.NewSheetsWriterFromEnv(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets writer", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets writer initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	events, err := appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer events.Close()

	worker := export.NewWorker(result.Repo, writer, logger)
	handle := func(msg *appamqp.TransactionCreatedMessage) error {
		return worker.Handle(ctx, msg)
	}

	// Consume until shutdown. Dropped broker connections are re-dialed
	// with backoff and consumption restarts on the new channel.
	for {
		err := events.ConsumeTransactionCreated(ctx, handle)
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			break
		}

		logger.Warn("Message consumption stopped, reconnecting", log.FieldError, err)
		if err := events.Reconnect(ctx); err != nil {
			break
		}
	}

	logger.Info("Export worker stopped gracefully")
}
