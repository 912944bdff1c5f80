package client

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

func testLogger() *log.Logger {
	return log.New(log.DefaultConfig())
}

// fakeProvider is an in-test identity provider with a synchronous
// session stream, so transitions are observable without sleeps.
type fakeProvider struct {
	mu          sync.Mutex
	identity    ports.Identity
	active      bool
	exchangeErr error
	exchanges   int
	watchers    map[int]func(ports.Identity, bool)
	nextWatch   int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{watchers: make(map[int]func(ports.Identity, bool))}
}

func (p *fakeProvider) Exchange(_ context.Context, identifier, _ string) (ports.Identity, error) {
	p.mu.Lock()
	p.exchanges++
	if err := p.exchangeErr; err != nil {
		p.mu.Unlock()
		return ports.Identity{}, err
	}
	id := ports.Identity{UID: "uid-" + identifier, Email: identifier}
	p.identity = id
	p.active = true
	fns := p.snapshotWatchers()
	p.mu.Unlock()

	for _, fn := range fns {
		fn(id, true)
	}
	return id, nil
}

func (p *fakeProvider) Current() (ports.Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.identity, p.active
}

func (p *fakeProvider) Watch(fn func(ports.Identity, bool)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := p.nextWatch
	p.nextWatch++
	p.watchers[key] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.watchers, key)
	}
}

func (p *fakeProvider) signOut() {
	p.mu.Lock()
	p.identity = ports.Identity{}
	p.active = false
	fns := p.snapshotWatchers()
	p.mu.Unlock()

	for _, fn := range fns {
		fn(ports.Identity{}, false)
	}
}

func (p *fakeProvider) snapshotWatchers() []func(ports.Identity, bool) {
	fns := make([]func(ports.Identity, bool), 0, len(p.watchers))
	for _, fn := range p.watchers {
		fns = append(fns, fn)
	}
	return fns
}

// fakeStore is an in-memory document store that pushes a full per-owner
// snapshot to open subscriptions after every create.
type fakeStore struct {
	mu        sync.Mutex
	records   map[string][]core.Record
	subs      map[string][]*fakeSub
	createErr error
	creates   int
	nextID    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: make(map[string][]core.Record),
		subs:    make(map[string][]*fakeSub),
	}
}

func (s *fakeStore) Create(_ context.Context, r core.Record) (string, error) {
	s.mu.Lock()
	s.creates++
	if err := s.createErr; err != nil {
		s.mu.Unlock()
		return "", err
	}
	s.nextID++
	r.ID = fmt.Sprintf("rec-%d", s.nextID)
	s.records[r.OwnerID] = append(s.records[r.OwnerID], r)
	snapshot := append([]core.Record(nil), s.records[r.OwnerID]...)
	targets := append([]*fakeSub(nil), s.subs[r.OwnerID]...)
	s.mu.Unlock()

	for _, sub := range targets {
		sub.push(snapshot)
	}
	return r.ID, nil
}

func (s *fakeStore) Subscribe(_ context.Context, ownerID string) (ports.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &fakeSub{ch: make(chan []core.Record, 8)}
	s.subs[ownerID] = append(s.subs[ownerID], sub)
	sub.push(append([]core.Record(nil), s.records[ownerID]...))
	return sub, nil
}

func (s *fakeStore) seed(r core.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	if r.ID == "" {
		r.ID = fmt.Sprintf("rec-%d", s.nextID)
	}
	s.records[r.OwnerID] = append(s.records[r.OwnerID], r)
}

func (s *fakeStore) createCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

type fakeSub struct {
	mu     sync.Mutex
	ch     chan []core.Record
	closed bool
	err    error
}

func (f *fakeSub) Snapshots() <-chan []core.Record { return f.ch }

func (f *fakeSub) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeSub) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.ch)
}

func (f *fakeSub) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.err = err
	close(f.ch)
}

func (f *fakeSub) push(snapshot []core.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.ch <- snapshot
}

func (f *fakeSub) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
