package core

import (
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("expected ok for zero, got %v", err)
	}
	if err := (Money{Cents: 1250}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5000, "$50.00"},
		{1250, "$12.50"},
		{-1250, "$-12.50"},
	}
	for i, tc := range cases {
		if got := (Money{Cents: tc.cents}).Format(); got != tc.want {
			t.Fatalf("case %d: got %q want %q", i, got, tc.want)
		}
	}
}

func TestRecordValidate(t *testing.T) {
	good := Record{
		Amount:     Money{Cents: 100},
		Category:   Food,
		Kind:       Expense,
		OwnerID:    "uid-1",
		OccurredAt: time.Now(),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Record{
		{Amount: Money{Cents: -1}, Category: Food, Kind: Expense, OwnerID: "u", OccurredAt: time.Now()},
		{Amount: Money{Cents: 1}, Category: "Snacks", Kind: Expense, OwnerID: "u", OccurredAt: time.Now()},
		{Amount: Money{Cents: 1}, Category: Food, Kind: "transfer", OwnerID: "u", OccurredAt: time.Now()},
		{Amount: Money{Cents: 1}, Category: Food, Kind: Expense, OwnerID: "  ", OccurredAt: time.Now()},
		{Amount: Money{Cents: 1}, Category: Food, Kind: Expense, OwnerID: "u"},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Fatalf("category %q should be valid", c)
		}
	}
	if Category("Groceries").Valid() {
		t.Fatalf("unknown category should be invalid")
	}
}
