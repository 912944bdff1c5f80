// Package client implements the dashboard's state management: a session
// gate deciding which view renders, and a ledger sync client keeping a
// per-identity transaction list and derived balance live.
package client

import (
	"context"

	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// App wires the gate to the ledger: whenever the identity changes the
// active subscription is torn down, and re-established for the new
// identity if one is present. The ledger never outlives the identity it
// was opened for.
type App struct {
	gate   *Gate
	ledger *Ledger
	logger *log.Logger
}

func NewApp(provider ports.IdentityProvider, store ports.DocumentStore, logger *log.Logger, opts ...LedgerOption) *App {
	a := &App{
		logger: logger.WithComponent("app"),
	}
	a.ledger = NewLedger(store, logger, opts...)
	a.gate = NewGate(provider, a.viewChanged)
	return a
}

func (a *App) Gate() *Gate     { return a.gate }
func (a *App) Ledger() *Ledger { return a.ledger }

// Close releases the gate's provider watch and the ledger subscription.
func (a *App) Close() {
	a.gate.Close()
	a.ledger.Close()
}

func (a *App) viewChanged(v View) {
	switch v.Phase {
	case Authenticated:
		if err := a.ledger.Open(context.Background(), v.Identity.UID); err != nil {
			a.logger.Error("Failed to open ledger for identity", "uid", v.Identity.UID, "error", err)
		}
	default:
		a.ledger.Close()
	}
}
