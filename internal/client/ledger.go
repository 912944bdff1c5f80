package client

import (
	"context"
	"errors"
	"time"

	"sync"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

var ErrNoActiveOwner = errors.New("no active owner")

// Ledger keeps a per-identity materialized view of transaction history
// live. It owns at most one subscription; the materialized list is a
// read-through cache of the remote collection, replaced wholesale on
// every delivery and discarded on every owner change.
type Ledger struct {
	store  ports.DocumentStore
	logger *log.Logger

	// onUpdate fires after each applied snapshot with the replacement
	// list and its recomputed balance. onError fires if the subscription
	// stream fails; the view must surface it rather than freeze.
	onUpdate func(records []core.Record, balance core.Money)
	onError  func(err error)

	mu      sync.Mutex
	ownerID string
	sub     ports.Subscription
	records []core.Record
	balance core.Money
}

// LedgerOption configures optional callbacks on a Ledger.
type LedgerOption func(*Ledger)

func WithUpdateFunc(fn func([]core.Record, core.Money)) LedgerOption {
	return func(l *Ledger) { l.onUpdate = fn }
}

func WithErrorFunc(fn func(error)) LedgerOption {
	return func(l *Ledger) { l.onError = fn }
}

func NewLedger(store ports.DocumentStore, logger *log.Logger, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		store:  store,
		logger: logger.WithComponent("ledger"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open establishes the live query for ownerID. Any previous subscription
// is closed first and its materialized list discarded, so records from a
// prior identity never leak into the new view.
func (l *Ledger) Open(ctx context.Context, ownerID string) error {
	l.Close()

	sub, err := l.store.Subscribe(ctx, ownerID)
	if err != nil {
		l.logger.Error("Failed to open subscription", "owner_id", ownerID, "error", err)
		return err
	}

	l.mu.Lock()
	l.ownerID = ownerID
	l.sub = sub
	l.mu.Unlock()

	go l.consume(sub)

	l.logger.Info("Subscription opened", "owner_id", ownerID)
	return nil
}

// Close releases the active subscription, if any, and discards the
// materialized list. Safe to call when nothing is open, and idempotent.
func (l *Ledger) Close() {
	l.mu.Lock()
	sub := l.sub
	l.sub = nil
	l.ownerID = ""
	l.records = nil
	l.balance = core.Money{}
	l.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

// Append validates the draft, shapes a record owned by the active
// identity with OccurredAt set to now, and submits it for creation. The
// reflected write arrives through the subscription; nothing is merged
// locally. Malformed amounts are rejected before any store call. Store
// failures are logged and returned without retry so the caller can keep
// the draft for resubmission.
func (l *Ledger) Append(ctx context.Context, amount string, category core.Category, kind core.Kind) error {
	cents, err := core.ParseAmountToCents(amount)
	if err != nil {
		return err
	}

	l.mu.Lock()
	ownerID := l.ownerID
	l.mu.Unlock()
	if ownerID == "" {
		return ErrNoActiveOwner
	}

	rec := core.Record{
		Amount:     core.Money{Cents: cents},
		Category:   category,
		Kind:       kind,
		OwnerID:    ownerID,
		OccurredAt: time.Now().UTC(),
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	id, err := l.store.Create(ctx, rec)
	if err != nil {
		l.logger.Error("Failed to append record",
			"owner_id", ownerID,
			"amount_cents", rec.Amount.Cents,
			"category", string(rec.Category),
			"kind", string(rec.Kind),
			"error", err)
		return err
	}

	l.logger.Info("Record appended", "record_id", id, "owner_id", ownerID)
	return nil
}

// Records returns a copy of the current materialized list.
func (l *Ledger) Records() []core.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Record(nil), l.records...)
}

// Balance returns the balance derived from the current materialized list.
func (l *Ledger) Balance() core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

func (l *Ledger) consume(sub ports.Subscription) {
	for snapshot := range sub.Snapshots() {
		l.mu.Lock()
		if l.sub != sub {
			// A newer subscription took over; this delivery is stale.
			l.mu.Unlock()
			return
		}
		l.records = snapshot
		l.balance = core.ComputeBalance(snapshot)
		records := append([]core.Record(nil), snapshot...)
		balance := l.balance
		notify := l.onUpdate
		l.mu.Unlock()

		if notify != nil {
			notify(records, balance)
		}
	}

	if err := sub.Err(); err != nil {
		l.mu.Lock()
		current := l.sub == sub
		notify := l.onError
		l.mu.Unlock()
		if current {
			l.logger.Error("Subscription stream failed", "error", err)
			if notify != nil {
				notify(err)
			}
		}
	}
}
