// Package services orchestrates operations that span the document store
// and the event pipeline.
package services

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// LedgerService wraps the document store and publishes a created event
// for every append. The broker is optional: a nil client downgrades
// publishing to a warning, and a publish failure never fails the append,
// the record is already durable.
type LedgerService struct {
	docs   ports.DocumentStore
	events *amqp.Client
	logger *log.Logger
}

var _ ports.DocumentStore = (*LedgerService)(nil)

func NewLedgerService(docs ports.DocumentStore, events *amqp.Client, logger *log.Logger) *LedgerService {
	return &LedgerService{
		docs:   docs,
		events: events,
		logger: logger.WithComponent("ledger_service"),
	}
}

func (s *LedgerService) Create(ctx context.Context, r core.Record) (string, error) {
	id, err := s.docs.Create(ctx, r)
	if err != nil {
		return "", err
	}

	if s.events == nil {
		s.logger.WarnContext(ctx, "AMQP client not available, skipping created event", log.FieldRecordID, id)
		return id, nil
	}
	if err := s.events.PublishTransactionCreated(ctx, id, r.OwnerID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish created event",
			log.FieldRecordID, id,
			log.FieldError, err)
	}
	return id, nil
}

func (s *LedgerService) Subscribe(ctx context.Context, ownerID string) (ports.Subscription, error) {
	return s.docs.Subscribe(ctx, ownerID)
}
