// Package hub layers live filtered subscriptions over a record
// repository. Every successful create re-reads the owner's full list and
// delivers it to that owner's subscribers as an authoritative snapshot;
// subscribers never see diffs, and never see another owner's records.
package hub

import (
	"context"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
	"fintrack/internal/store"
)

const (
	snapshotCacheSize = 1024
	snapshotCacheTTL  = 30 * time.Second
)

// Hub implements ports.DocumentStore over a store.Repository.
type Hub struct {
	repo      store.Repository
	logger    *log.Logger
	snapshots *cache.LRU[[]core.Record]

	mu   sync.Mutex
	subs map[string]map[*subscription]struct{}
	// gens counts creates per owner. Repository reads happen outside the
	// lock, so writers into the cache or the delivery channels must
	// verify the generation they read under has not moved; a stale
	// writer backs off and the writer for the newer generation wins.
	gens map[string]uint64
}

var _ ports.DocumentStore = (*Hub)(nil)

func New(repo store.Repository, logger *log.Logger) *Hub {
	return &Hub{
		repo:      repo,
		logger:    logger.WithComponent(log.ComponentHub),
		snapshots: cache.NewLRU[[]core.Record](snapshotCacheSize, snapshotCacheTTL),
		subs:      make(map[string]map[*subscription]struct{}),
		gens:      make(map[string]uint64),
	}
}

// Create persists the record and pushes a fresh snapshot to every
// subscriber of its owner.
func (h *Hub) Create(ctx context.Context, r core.Record) (string, error) {
	rec, err := h.repo.CreateRecord(ctx, r)
	if err != nil {
		return "", err
	}
	// Bump the generation before invalidating so an in-flight read of
	// the pre-create list can never repopulate the cache.
	h.mu.Lock()
	h.gens[rec.OwnerID]++
	gen := h.gens[rec.OwnerID]
	h.mu.Unlock()
	h.snapshots.Delete(rec.OwnerID)

	h.notify(ctx, rec.OwnerID, gen)
	return rec.ID, nil
}

// Subscribe delivers the owner's current list immediately, then a full
// replacement after every create for that owner.
func (h *Hub) Subscribe(ctx context.Context, ownerID string) (ports.Subscription, error) {
	sub := &subscription{
		hub:     h,
		ownerID: ownerID,
		ch:      make(chan []core.Record, 1),
	}

	for {
		h.mu.Lock()
		gen := h.gens[ownerID]
		h.mu.Unlock()

		// Creates refresh the cache under their own generation check, so
		// a cache hit is as authoritative as a repository read.
		initial, cached := h.snapshots.Get(ownerID)
		if !cached {
			var err error
			initial, err = h.repo.ListByOwner(ctx, ownerID)
			if err != nil {
				return nil, err
			}
		}

		h.mu.Lock()
		if h.gens[ownerID] != gen {
			// A create landed while the list was being read; what we
			// hold may predate it. Read again.
			h.mu.Unlock()
			continue
		}
		if !cached {
			h.snapshots.Set(ownerID, initial)
		}
		owner := h.subs[ownerID]
		if owner == nil {
			owner = make(map[*subscription]struct{})
			h.subs[ownerID] = owner
		}
		owner[sub] = struct{}{}
		// Deliver under the lock: a concurrent create cannot push until
		// it takes the lock, so the initial list can never overwrite a
		// fresher delivery. push never blocks.
		sub.push(initial)
		h.mu.Unlock()

		return sub, nil
	}
}

// Subscribers reports how many subscriptions are open for an owner.
func (h *Hub) Subscribers(ownerID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[ownerID])
}

func (h *Hub) notify(ctx context.Context, ownerID string, gen uint64) {
	snapshot, err := h.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		// The stream cannot go silent: fail the subscriptions so the
		// views surface the error instead of freezing on stale data.
		h.logger.ErrorContext(ctx, "Snapshot read failed", log.FieldOwnerID, ownerID, log.FieldError, err)
		h.mu.Lock()
		targets := make([]*subscription, 0, len(h.subs[ownerID]))
		for sub := range h.subs[ownerID] {
			targets = append(targets, sub)
		}
		h.mu.Unlock()
		for _, sub := range targets {
			sub.fail(err)
		}
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.gens[ownerID] != gen {
		// A newer create's notify carries a list that includes this
		// record; caching or delivering this one would roll it back.
		return
	}
	h.snapshots.Set(ownerID, snapshot)
	for sub := range h.subs[ownerID] {
		sub.push(snapshot)
	}
}

func (h *Hub) unregister(sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if owner, ok := h.subs[sub.ownerID]; ok {
		delete(owner, sub)
		if len(owner) == 0 {
			delete(h.subs, sub.ownerID)
		}
	}
}

type subscription struct {
	hub     *Hub
	ownerID string
	ch      chan []core.Record

	mu     sync.Mutex
	closed bool
	err    error
}

var _ ports.Subscription = (*subscription)(nil)

func (s *subscription) Snapshots() <-chan []core.Record { return s.ch }

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close is idempotent; it stops delivery and releases the registration.
func (s *subscription) Close() {
	s.hub.unregister(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// push delivers a snapshot, coalescing under a slow consumer: snapshots
// are full replacements, so only the latest one matters.
func (s *subscription) push(snapshot []core.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- snapshot:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

func (s *subscription) fail(err error) {
	s.hub.unregister(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.ch)
}
