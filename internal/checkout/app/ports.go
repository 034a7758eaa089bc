package app

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/veltrix/storefront/internal/checkout/domain"
)

type CartItem struct {
	ProductID int64
	Quantity  int
}

// CartReader reads the current cart lines and clears them after settlement.
type CartReader interface {
	Items(ctx context.Context) ([]CartItem, error)
	Clear(ctx context.Context) error
}

type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// CatalogReader resolves authoritative product data; quoted prices come from
// the catalog, not from whatever the cart captured at add time.
type CatalogReader interface {
	GetProduct(ctx context.Context, productID int64) (Product, error)
}

// PaymentProvider is the boundary contract of the payment collaborator. The
// shipped implementation is a fixed-delay stub; a production one would create
// a hosted session and redirect.
type PaymentProvider interface {
	CreateSession(ctx context.Context, quote domain.Quote) (string, error)
	Pay(ctx context.Context, sessionID string) error
}
