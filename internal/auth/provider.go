// Package auth implements a local identity provider backed by a user
// store. It issues opaque session tokens and exposes the session stream
// the dashboard's gate observes.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// Session is an authenticated principal plus its bearer token. Done is
// closed when the session is revoked.
type Session struct {
	Token    string
	Identity ports.Identity
	done     chan struct{}
}

// Done reports revocation: the channel is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.done }

// Provider exchanges credentials against the user store and tracks live
// sessions. It also implements ports.IdentityProvider for in-process
// clients: Current/Watch reflect the most recent exchange on this
// provider instance.
type Provider struct {
	users  ports.UserStore
	logger *log.Logger

	mu        sync.Mutex
	sessions  map[string]*Session
	current   ports.Identity
	// currentToken names the session backing current, so revoking one of
	// a user's other sessions never tears down the watch stream.
	currentToken string
	active       bool
	watchers     map[int]func(ports.Identity, bool)
	nextWatch    int
}

var _ ports.IdentityProvider = (*Provider)(nil)

func NewProvider(users ports.UserStore, logger *log.Logger) *Provider {
	return &Provider{
		users:    users,
		logger:   logger.WithComponent(log.ComponentAuth),
		sessions: make(map[string]*Session),
		watchers: make(map[int]func(ports.Identity, bool)),
	}
}

// Register creates a user with a bcrypt-hashed secret.
func (p *Provider) Register(ctx context.Context, email, secret string) (ports.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || secret == "" {
		return ports.User{}, ports.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return ports.User{}, err
	}
	return p.users.CreateUser(ctx, email, string(hash))
}

// Login exchanges credentials for a session token. Unknown identifiers
// and wrong secrets produce the same error so the response does not leak
// which accounts exist.
func (p *Provider) Login(ctx context.Context, identifier, secret string) (*Session, error) {
	user, err := p.users.UserByEmail(ctx, strings.TrimSpace(strings.ToLower(identifier)))
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return nil, ports.ErrInvalidCredentials
		}
		p.logger.ErrorContext(ctx, "User lookup failed", log.FieldError, err)
		return nil, ports.ErrProviderUnavailable
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)) != nil {
		return nil, ports.ErrInvalidCredentials
	}

	sess := &Session{
		Token:    uuid.NewString(),
		Identity: ports.Identity{UID: user.ID, Email: user.Email},
		done:     make(chan struct{}),
	}

	p.mu.Lock()
	p.sessions[sess.Token] = sess
	p.current = sess.Identity
	p.currentToken = sess.Token
	p.active = true
	watchers := p.snapshotWatchers()
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "Session opened", log.FieldOwnerID, sess.Identity.UID)
	for _, fn := range watchers {
		fn(sess.Identity, true)
	}
	return sess, nil
}

// SessionForToken resolves a bearer token to its live session.
func (p *Provider) SessionForToken(token string) (*Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sess, ok := p.sessions[token]
	return sess, ok
}

// Revoke ends a session. Subscriptions watching the session's Done
// channel observe the closure; only if this session is the one backing
// the provider's current identity does the watch stream transition to
// "none".
func (p *Provider) Revoke(token string) {
	p.mu.Lock()
	sess, ok := p.sessions[token]
	if !ok {
		p.mu.Unlock()
		return
	}
	delete(p.sessions, token)

	var watchers []func(ports.Identity, bool)
	if p.active && p.currentToken == token {
		p.current = ports.Identity{}
		p.currentToken = ""
		p.active = false
		watchers = p.snapshotWatchers()
	}
	p.mu.Unlock()

	close(sess.done)
	p.logger.Info("Session revoked", log.FieldOwnerID, sess.Identity.UID)
	for _, fn := range watchers {
		fn(ports.Identity{}, false)
	}
}

// Exchange implements ports.IdentityProvider.
func (p *Provider) Exchange(ctx context.Context, identifier, secret string) (ports.Identity, error) {
	sess, err := p.Login(ctx, identifier, secret)
	if err != nil {
		return ports.Identity{}, err
	}
	return sess.Identity, nil
}

// Current implements ports.IdentityProvider.
func (p *Provider) Current() (ports.Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.active
}

// Watch implements ports.IdentityProvider. The callback fires on every
// session transition until the returned cancel func is called.
func (p *Provider) Watch(fn func(ports.Identity, bool)) func() {
	p.mu.Lock()
	id := p.nextWatch
	p.nextWatch++
	p.watchers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.watchers, id)
		p.mu.Unlock()
	}
}

func (p *Provider) snapshotWatchers() []func(ports.Identity, bool) {
	fns := make([]func(ports.Identity, bool), 0, len(p.watchers))
	for _, fn := range p.watchers {
		fns = append(fns, fn)
	}
	return fns
}
