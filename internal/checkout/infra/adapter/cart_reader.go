package adapter

import (
	"context"

	checkoutapp "github.com/veltrix/storefront/internal/checkout/app"
	sessionapp "github.com/veltrix/storefront/internal/session/app"
)

// SessionCartReader exposes the session store's cart to checkout.
type SessionCartReader struct {
	store *sessionapp.Store
}

func NewSessionCartReader(store *sessionapp.Store) *SessionCartReader {
	return &SessionCartReader{store: store}
}

func (r *SessionCartReader) Items(_ context.Context) ([]checkoutapp.CartItem, error) {
	lines := r.store.Lines()

	items := make([]checkoutapp.CartItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, checkoutapp.CartItem{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
		})
	}
	return items, nil
}

func (r *SessionCartReader) Clear(_ context.Context) error {
	r.store.ClearCart()
	return nil
}
