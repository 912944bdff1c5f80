package export

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// RecordFetcher looks up a ledger record by ID.
type RecordFetcher interface {
	RecordByID(ctx context.Context, id string) (core.Record, error)
}

// Worker consumes transaction-created events and mirrors each record to
// a spreadsheet row.
type Worker struct {
	repo   RecordFetcher
	writer RowWriter
	logger *log.Logger
}

func NewWorker(repo RecordFetcher, writer RowWriter, logger *log.Logger) *Worker {
	return &Worker{
		repo:   repo,
		writer: writer,
		logger: logger.WithComponent(log.ComponentExport),
	}
}

// Handle processes one queue message. A missing record is logged and
// dropped rather than requeued since it will never reappear.
func (w *Worker) Handle(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	record, err := w.repo.RecordByID(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			w.logger.Warn("record vanished before export, skipping",
				log.FieldRecordID, msg.ID)
			return nil
		}
		return fmt.Errorf("fetch record %s: %w", msg.ID, err)
	}

	if err := w.writer.AppendRow(ctx, record); err != nil {
		return fmt.Errorf("export record %s: %w", record.ID, err)
	}

	w.logger.Info("record exported",
		log.FieldRecordID, record.ID,
		log.FieldOwnerID, record.OwnerID,
		log.FieldAmount, record.Amount.Cents)
	return nil
}
