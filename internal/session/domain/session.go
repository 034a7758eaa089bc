package domain

import (
	"github.com/shopspring/decimal"
	catalog "github.com/veltrix/storefront/internal/catalog/domain"
)

// CartLine is one product entry in the cart. Quantity is always >= 1; a line
// that would drop to zero is removed instead.
type CartLine struct {
	Product  catalog.Product
	Quantity int
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Identity is the externally-sourced profile of the signed-in user. The store
// never fabricates one; it only holds the latest value pushed by the auth
// bridge. A nil *Identity means signed out.
type Identity struct {
	DisplayName string
	Email       string
	PhotoURL    string
}

type EventKind string

const (
	EventItemAdded       EventKind = "item_added"
	EventItemIncremented EventKind = "item_incremented"
	EventItemRemoved     EventKind = "item_removed"
	EventCartCleared     EventKind = "cart_cleared"
	EventIdentityChanged EventKind = "identity_changed"
)

// Event is the store's notification feed, the backend analogue of the UI's
// toast stream. Informational only; correctness never depends on it.
type Event struct {
	Kind        EventKind
	ProductID   int64
	ProductName string
	Identity    *Identity
}
