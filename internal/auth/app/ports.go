package app

import (
	"context"
	"errors"

	"github.com/veltrix/storefront/internal/session/domain"
)

type ProviderKind string

const (
	ProviderGoogle ProviderKind = "google"
	ProviderGitHub ProviderKind = "github"
)

var (
	// ErrCancelled: the user closed the sign-in flow. Never surfaced.
	ErrCancelled = errors.New("sign-in cancelled")
	// ErrPopupBlocked: the provider popup was blocked. Surfaced with an
	// instruction to allow popups.
	ErrPopupBlocked = errors.New("sign-in popup blocked")
	// ErrSignInFailed: any other provider failure. Surfaced as a generic
	// retry prompt.
	ErrSignInFailed = errors.New("sign-in failed")

	ErrUnknownProvider = errors.New("unknown provider")
)

// IdentityProvider is the boundary contract of the external identity
// provider. Subscribe is called exactly once, at process start; the returned
// channel delivers the full identity on sign-in and nil on sign-out, and
// stays open for the process lifetime.
type IdentityProvider interface {
	SignIn(ctx context.Context, kind ProviderKind) (domain.Identity, error)
	SignOut(ctx context.Context) error
	Subscribe(ctx context.Context) (<-chan *domain.Identity, error)
}
