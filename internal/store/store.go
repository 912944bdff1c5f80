// Package store provides the persistence backends for ledger records and
// user credentials. Live subscriptions are layered on top by the hub
// package; every backend only needs to create records and serve the full
// per-owner list.
package store

import (
	"context"
	"errors"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

// ErrRecordNotFound is returned by RecordByID for unknown IDs.
var ErrRecordNotFound = errors.New("record not found")

// Repository is the full persistence surface a backend must provide.
type Repository interface {
	// CreateRecord persists r and returns it with the store-assigned ID.
	CreateRecord(ctx context.Context, r core.Record) (core.Record, error)

	// RecordByID fetches a single record; the export worker resolves
	// queued event IDs through this.
	RecordByID(ctx context.Context, id string) (core.Record, error)

	ports.RecordLister
	ports.UserStore

	Close() error
}
