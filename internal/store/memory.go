package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

// Memory is an in-process Repository. It is the default backend and the
// one tests run against.
type Memory struct {
	mu      sync.Mutex
	records []core.Record
	users   map[string]ports.User // keyed by email
}

var _ Repository = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{users: make(map[string]ports.User)}
}

func (m *Memory) CreateRecord(_ context.Context, r core.Record) (core.Record, error) {
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}
	r.ID = uuid.NewString()

	m.mu.Lock()
	m.records = append(m.records, r)
	m.mu.Unlock()
	return r, nil
}

func (m *Memory) RecordByID(_ context.Context, id string) (core.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return core.Record{}, ErrRecordNotFound
}

func (m *Memory) ListByOwner(_ context.Context, ownerID string) ([]core.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []core.Record
	for _, r := range m.records {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out, nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (ports.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[email]
	if !ok {
		return ports.User{}, ports.ErrUserNotFound
	}
	return user, nil
}

func (m *Memory) CreateUser(_ context.Context, email, passwordHash string) (ports.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[email]; ok {
		return ports.User{}, ports.ErrUserExists
	}
	user := ports.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
	}
	m.users[email] = user
	return user, nil
}

func (m *Memory) Close() error { return nil }
