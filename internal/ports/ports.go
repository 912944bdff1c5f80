package ports

import (
	"context"

	"fintrack/internal/core"
)

// Identity is the authenticated principal returned by an identity
// provider. The application holds it read-only for the session lifetime.
type Identity struct {
	UID   string
	Email string
}

// Ports for outbound collaborators.
type (
	// IdentityProvider exchanges credentials for an Identity and exposes
	// the provider's own session stream. Watch delivers every transition,
	// including to "none" (active=false), asynchronously.
	IdentityProvider interface {
		Exchange(ctx context.Context, identifier, secret string) (Identity, error)
		Current() (Identity, bool)
		Watch(fn func(id Identity, active bool)) (cancel func())
	}

	// DocumentStore persists ledger records and serves live filtered
	// subscriptions. Subscribe delivers full snapshots: every record
	// currently matching ownerID at least once, then the complete current
	// list after each subsequent create. Deliveries are authoritative
	// replacements, never diffs, and carry no ordering guarantee relative
	// to an in-flight Create.
	DocumentStore interface {
		Create(ctx context.Context, r core.Record) (id string, err error)
		Subscribe(ctx context.Context, ownerID string) (Subscription, error)
	}

	// Subscription is a live filtered stream of full snapshots. Close is
	// idempotent; after Close (or a stream failure) Snapshots is closed
	// and Err reports the terminal error, if any.
	Subscription interface {
		Snapshots() <-chan []core.Record
		Err() error
		Close()
	}

	// RecordLister reads the full current list for one owner. The hub
	// re-reads through this on every create to build snapshots.
	RecordLister interface {
		ListByOwner(ctx context.Context, ownerID string) ([]core.Record, error)
	}

	// UserStore holds provider credentials for the local identity provider.
	UserStore interface {
		UserByEmail(ctx context.Context, email string) (User, error)
		CreateUser(ctx context.Context, email, passwordHash string) (User, error)
	}
)

// User is a stored credential entry. PasswordHash is a bcrypt hash.
type User struct {
	ID           string
	Email        string
	PasswordHash string
}
