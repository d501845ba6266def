// Package identity is the boundary to the external identity provider. The
// chat core only consumes it: a provider yields stable user identifiers
// for the session duration and accepts sign-out requests.
package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrAuthFailed is returned when a credential does not resolve to a user.
var ErrAuthFailed = errors.New("authentication failed")

// Session is one auth-state event. An empty User means signed out. ID is
// unique per event so consumers can dedupe replays.
type Session struct {
	ID   string
	User string
}

// Provider abstracts the external identity service.
type Provider interface {
	// Authenticate resolves a bearer credential to a user identifier.
	Authenticate(ctx context.Context, token string) (string, error)
	// OnAuthChange streams auth-state transitions for the process
	// lifetime. stop releases the stream.
	OnAuthChange(ctx context.Context) (events <-chan Session, stop func())
	// SignOut terminates the user's session with the provider.
	SignOut(ctx context.Context, user string) error
}

// StaticProvider is a token-table stand-in for the external provider,
// loaded from configuration. Suitable for development and tests.
type StaticProvider struct {
	mu       sync.Mutex
	tokens   map[string]string // token -> user
	watchers []chan Session
}

// NewStaticProvider creates a provider over a fixed token table.
func NewStaticProvider(tokens map[string]string) *StaticProvider {
	cp := make(map[string]string, len(tokens))
	for k, v := range tokens {
		cp[k] = v
	}
	return &StaticProvider{tokens: cp}
}

// Authenticate resolves token against the table.
func (p *StaticProvider) Authenticate(ctx context.Context, token string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.tokens[token]
	if !ok || user == "" {
		return "", ErrAuthFailed
	}
	return user, nil
}

// OnAuthChange streams sign-out events. The static table never signs users
// in asynchronously, so only SignOut produces events.
func (p *StaticProvider) OnAuthChange(ctx context.Context) (<-chan Session, func()) {
	ch := make(chan Session, 4)
	p.mu.Lock()
	p.watchers = append(p.watchers, ch)
	p.mu.Unlock()

	stop := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, w := range p.watchers {
			if w == ch {
				p.watchers = append(p.watchers[:i], p.watchers[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, stop
}

// SignOut notifies watchers. Session state with the static table is
// otherwise unchanged; tokens stay valid until rotated in config.
func (p *StaticProvider) SignOut(ctx context.Context, user string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	event := Session{ID: uuid.NewString()}
	for _, w := range p.watchers {
		select {
		case w <- event:
		default:
		}
	}
	return nil
}
