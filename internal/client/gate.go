package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"fintrack/internal/ports"
)

// Phase selects which of the three top-level views is rendered.
type Phase int

const (
	Unauthenticated Phase = iota
	Loading
	Authenticated
)

func (p Phase) String() string {
	switch p {
	case Unauthenticated:
		return "unauthenticated"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// View is the tagged variant consumed by the single render-dispatch
// point: the Identity field is meaningful only when Phase is
// Authenticated.
type View struct {
	Phase    Phase
	Identity ports.Identity
}

var ErrEmptyCredentials = errors.New("identifier and secret must be non-empty")

// Gate decides whether an identity is present before the ledger view may
// render. It owns no identity state of its own: identity enters only via
// the provider's session stream, never from ambient globals.
type Gate struct {
	provider ports.IdentityProvider

	mu          sync.Mutex
	view        View
	cancelWatch func()
	onChange    func(View)
}

// NewGate builds a gate over the provider. onChange (optional) fires on
// every view transition, including the initial resolution.
func NewGate(provider ports.IdentityProvider, onChange func(View)) *Gate {
	g := &Gate{
		provider: provider,
		view:     View{Phase: Loading},
		onChange: onChange,
	}
	g.cancelWatch = provider.Watch(g.identityChanged)

	// Resolve the current session before the first render.
	if id, ok := provider.Current(); ok {
		g.identityChanged(id, true)
	} else {
		g.identityChanged(ports.Identity{}, false)
	}
	return g
}

// SubmitCredentials exchanges the form inputs for an identity. On
// success no local state is mutated here: the provider's session stream
// propagates the new identity. On failure the provider's error is
// returned for synchronous display and nothing is retried.
func (g *Gate) SubmitCredentials(ctx context.Context, identifier, secret string) error {
	if strings.TrimSpace(identifier) == "" || secret == "" {
		return ErrEmptyCredentials
	}
	_, err := g.provider.Exchange(ctx, identifier, secret)
	return err
}

// View returns the current render selection.
func (g *Gate) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view
}

// Close detaches from the provider's session stream.
func (g *Gate) Close() {
	g.mu.Lock()
	cancel := g.cancelWatch
	g.cancelWatch = nil
	g.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (g *Gate) identityChanged(id ports.Identity, active bool) {
	next := View{Phase: Unauthenticated}
	if active {
		next = View{Phase: Authenticated, Identity: id}
	}

	g.mu.Lock()
	if g.view == next {
		g.mu.Unlock()
		return
	}
	g.view = next
	notify := g.onChange
	g.mu.Unlock()

	if notify != nil {
		notify(next)
	}
}
