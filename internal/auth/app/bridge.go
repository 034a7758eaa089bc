package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/veltrix/storefront/internal/session/domain"
)

// IdentitySink is the slice of the session store the bridge writes to.
type IdentitySink interface {
	SetIdentity(*domain.Identity)
	CloseAuthPanel()
}

// Bridge forwards the provider's identity feed into the session store. It is
// one-directional and fire-and-forget: the latest value always wins, and
// values superseded before they are applied may be dropped. That is safe
// because an identity is replaced wholesale, never merged.
type Bridge struct {
	provider IdentityProvider
	sink     IdentitySink
	log      *slog.Logger
}

func NewBridge(provider IdentityProvider, sink IdentitySink, log *slog.Logger) *Bridge {
	return &Bridge{
		provider: provider,
		sink:     sink,
		log:      log,
	}
}

// Run subscribes to the provider and applies deliveries until ctx is
// cancelled. Call it once, in its own goroutine, at process start.
func (b *Bridge) Run(ctx context.Context) error {
	ch, err := b.provider.Subscribe(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case id, ok := <-ch:
			if !ok {
				return nil
			}
			id = coalesce(ch, id)
			b.sink.SetIdentity(id)
			b.log.Info("identity applied", slog.Bool("signed_in", id != nil))
		}
	}
}

// coalesce drains deliveries already queued behind the one just received, so
// only the newest is applied.
func coalesce(ch <-chan *domain.Identity, latest *domain.Identity) *domain.Identity {
	for {
		select {
		case id, ok := <-ch:
			if !ok {
				return latest
			}
			latest = id
		default:
			return latest
		}
	}
}

// SignIn runs the provider's own sign-in flow. On success the identity also
// arrives through the subscription; the store is updated here as well so the
// caller observes the result without racing the feed. A cancelled flow is
// silently ignored.
func (b *Bridge) SignIn(ctx context.Context, kind ProviderKind) (*domain.Identity, error) {
	if kind != ProviderGoogle && kind != ProviderGitHub {
		return nil, ErrUnknownProvider
	}

	id, err := b.provider.SignIn(ctx, kind)
	switch {
	case err == nil:
		b.sink.SetIdentity(&id)
		b.sink.CloseAuthPanel()
		b.log.Info("signed in", slog.String("provider", string(kind)), slog.String("user", id.DisplayName))
		return &id, nil
	case errors.Is(err, ErrCancelled):
		b.log.Debug("sign-in cancelled", slog.String("provider", string(kind)))
		return nil, ErrCancelled
	case errors.Is(err, ErrPopupBlocked):
		b.log.Warn("sign-in popup blocked", slog.String("provider", string(kind)))
		return nil, ErrPopupBlocked
	default:
		b.log.Error("sign-in failed", slog.String("provider", string(kind)), slog.Any("err", err))
		return nil, errors.Join(ErrSignInFailed, err)
	}
}

func (b *Bridge) SignOut(ctx context.Context) error {
	if err := b.provider.SignOut(ctx); err != nil {
		b.log.Error("sign-out failed", slog.Any("err", err))
		return err
	}
	b.sink.SetIdentity(nil)
	return nil
}
