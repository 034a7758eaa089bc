// Package devprovider is an in-process identity provider for local runs and
// tests. It signs in instantly with a canned identity and can be told to
// simulate the failure modes of a real popup flow.
package devprovider

import (
	"context"
	"sync"

	"github.com/veltrix/storefront/internal/auth/app"
	"github.com/veltrix/storefront/internal/session/domain"
)

// Outcome selects what the next SignIn call does.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeCancelled
	OutcomeBlocked
	OutcomeFailure
)

type Provider struct {
	mu       sync.Mutex
	identity domain.Identity
	outcome  Outcome
	signErr  error

	feed chan *domain.Identity
	once sync.Once
}

func New(identity domain.Identity) *Provider {
	return &Provider{
		identity: identity,
		feed:     make(chan *domain.Identity, 8),
	}
}

// SetOutcome controls the next SignIn result. failure err is only used with
// OutcomeFailure; nil falls back to a generic error.
func (p *Provider) SetOutcome(o Outcome, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcome = o
	p.signErr = err
}

func (p *Provider) SignIn(ctx context.Context, kind app.ProviderKind) (domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.outcome {
	case OutcomeCancelled:
		return domain.Identity{}, app.ErrCancelled
	case OutcomeBlocked:
		return domain.Identity{}, app.ErrPopupBlocked
	case OutcomeFailure:
		if p.signErr != nil {
			return domain.Identity{}, p.signErr
		}
		return domain.Identity{}, app.ErrSignInFailed
	}

	id := p.identity
	p.pushLocked(&id)
	return id, nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushLocked(nil)
	return nil
}

// Subscribe returns the provider's feed. The first delivery, the initial
// signed-out state, is queued immediately so subscribers resolve promptly.
func (p *Provider) Subscribe(ctx context.Context) (<-chan *domain.Identity, error) {
	p.once.Do(func() {
		p.feed <- nil
	})
	return p.feed, nil
}

// Push injects a delivery into the feed, for tests that drive the
// subscription directly.
func (p *Provider) Push(id *domain.Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushLocked(id)
}

func (p *Provider) pushLocked(id *domain.Identity) {
	// Non-blocking: the feed has no backpressure, latest wins downstream.
	select {
	case p.feed <- id:
	default:
	}
}
