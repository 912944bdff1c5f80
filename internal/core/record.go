package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Housing       Category = "Housing"
	Entertainment Category = "Entertainment"
	Salary        Category = "Salary"
	Other         Category = "Other"
)

const (
	Expense Kind = "expense"
	Income  Kind = "income"
)

type (
	Category string

	Kind string

	Money struct {
		Cents int64
	}

	// Record is a single immutable ledger entry. The store assigns ID on
	// creation; OwnerID partitions records between identities.
	Record struct {
		ID         string
		Amount     Money
		Category   Category
		Kind       Kind
		OwnerID    string
		OccurredAt time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidKind     = errors.New("invalid kind")
	ErrMissingOwner    = errors.New("missing owner")
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{Food, Transport, Housing, Entertainment, Salary, Other}
}

func (c Category) Valid() bool {
	switch c {
	case Food, Transport, Housing, Entertainment, Salary, Other:
		return true
	default:
		return false
	}
}

func (k Kind) Valid() bool {
	return k == Expense || k == Income
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Dollars returns the dollar value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}

// Format renders the amount the way the dashboard displays it, e.g. "$12.50".
func (m Money) Format() string {
	return fmt.Sprintf("$%.2f", m.Dollars())
}

func (r Record) Validate() error {
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if !r.Category.Valid() {
		return ErrInvalidCategory
	}
	if !r.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(r.OwnerID) == "" {
		return ErrMissingOwner
	}
	if r.OccurredAt.IsZero() {
		return errors.New("occurred-at cannot be zero")
	}
	return nil
}
