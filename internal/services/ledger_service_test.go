package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

type stubDocs struct {
	createErr error
	created   []core.Record
	subscribe int
}

func (s *stubDocs) Create(_ context.Context, r core.Record) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.created = append(s.created, r)
	return "rec-1", nil
}

func (s *stubDocs) Subscribe(context.Context, string) (ports.Subscription, error) {
	s.subscribe++
	return nil, nil
}

func testRecord() core.Record {
	return core.Record{
		Amount:     core.Money{Cents: 1250},
		Category:   core.Food,
		Kind:       core.Expense,
		OwnerID:    "alice",
		OccurredAt: time.Now().UTC(),
	}
}

func TestLedgerServiceCreateWithoutBroker(t *testing.T) {
	docs := &stubDocs{}
	svc := NewLedgerService(docs, nil, log.New(log.DefaultConfig()))

	id, err := svc.Create(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != "rec-1" {
		t.Errorf("id = %q, want rec-1", id)
	}
	if len(docs.created) != 1 {
		t.Errorf("store creates = %d, want 1", len(docs.created))
	}
}

func TestLedgerServiceCreatePropagatesStoreError(t *testing.T) {
	wantErr := errors.New("store down")
	docs := &stubDocs{createErr: wantErr}
	svc := NewLedgerService(docs, nil, log.New(log.DefaultConfig()))

	if _, err := svc.Create(context.Background(), testRecord()); !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
}

func TestLedgerServiceSubscribeDelegates(t *testing.T) {
	docs := &stubDocs{}
	svc := NewLedgerService(docs, nil, log.New(log.DefaultConfig()))

	if _, err := svc.Subscribe(context.Background(), "alice"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if docs.subscribe != 1 {
		t.Errorf("subscribe calls = %d, want 1", docs.subscribe)
	}
}
