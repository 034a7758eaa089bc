// Package stubpay is the demo payment provider: it accepts every session and
// settles after a fixed artificial delay. No card data, no network.
package stubpay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/veltrix/storefront/internal/checkout/domain"
)

var ErrUnknownSession = errors.New("unknown payment session")

type Provider struct {
	delay time.Duration

	mu       sync.Mutex
	sessions map[string]domain.Quote
	failNext error
}

func New(delay time.Duration) *Provider {
	return &Provider{
		delay:    delay,
		sessions: make(map[string]domain.Quote),
	}
}

// FailNext makes the next Pay call fail with err, for tests and demos.
func (p *Provider) FailNext(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failNext = err
}

func (p *Provider) CreateSession(_ context.Context, quote domain.Quote) (string, error) {
	id := uuid.NewString()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[id] = quote
	return id, nil
}

func (p *Provider) Pay(ctx context.Context, sessionID string) error {
	p.mu.Lock()
	_, ok := p.sessions[sessionID]
	fail := p.failNext
	p.failNext = nil
	p.mu.Unlock()

	if !ok {
		return ErrUnknownSession
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.delay):
	}

	p.mu.Lock()
	delete(p.sessions, sessionID)
	p.mu.Unlock()

	return fail
}
