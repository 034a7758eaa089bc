// Package app holds the session store: the single source of truth for cart
// contents, panel visibility and the current identity. Commands mutate under
// one mutex, queries read under the same mutex, observers are notified
// synchronously, so no caller ever observes a partial mutation.
package app

import (
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
	catalog "github.com/veltrix/storefront/internal/catalog/domain"
	"github.com/veltrix/storefront/internal/session/domain"
)

type Store struct {
	mu sync.Mutex

	lines []domain.CartLine

	cartPanelOpen bool
	authPanelOpen bool

	identity     *domain.Identity
	authResolved bool

	subs []func(domain.Event)

	log *slog.Logger
}

func NewStore(log *slog.Logger) *Store {
	return &Store{log: log}
}

// Subscribe registers an observer for store events. Observers run
// synchronously inside the emitting command and must not call back into the
// store.
func (s *Store) Subscribe(fn func(domain.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) emit(ev domain.Event) {
	for _, fn := range s.subs {
		fn(ev)
	}
}

// AddToCart appends a line for the product, or bumps the quantity of the
// existing line in place. Insertion order is stable: re-adding never moves a
// line. Never fails; no stock limits are modeled. The returned line is the
// post-command state; created reports whether the line is new.
func (s *Store) AddToCart(p catalog.Product) (line domain.CartLine, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].Product.ID == p.ID {
			s.lines[i].Quantity++
			s.log.Debug("cart item incremented", slog.Int64("product_id", p.ID), slog.Int("quantity", s.lines[i].Quantity))
			s.emit(domain.Event{Kind: domain.EventItemIncremented, ProductID: p.ID, ProductName: p.Name})
			return s.lines[i], false
		}
	}

	s.lines = append(s.lines, domain.CartLine{Product: p, Quantity: 1})
	s.log.Debug("cart item added", slog.Int64("product_id", p.ID))
	s.emit(domain.Event{Kind: domain.EventItemAdded, ProductID: p.ID, ProductName: p.Name})
	return s.lines[len(s.lines)-1], true
}

// RemoveFromCart deletes the line for the given product id. Removing an
// absent id is a no-op, not an error.
func (s *Store) RemoveFromCart(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Store) removeLocked(id int64) {
	for i := range s.lines {
		if s.lines[i].Product.ID == id {
			name := s.lines[i].Product.Name
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.emit(domain.Event{Kind: domain.EventItemRemoved, ProductID: id, ProductName: name})
			return
		}
	}
}

// UpdateQuantity sets the line's quantity to exactly qty. A qty <= 0 removes
// the line; an absent id is a no-op.
func (s *Store) UpdateQuantity(id int64, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		s.removeLocked(id)
		return
	}

	for i := range s.lines {
		if s.lines[i].Product.ID == id {
			s.lines[i].Quantity = qty
			return
		}
	}
}

func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return
	}
	s.lines = nil
	s.emit(domain.Event{Kind: domain.EventCartCleared})
}

func (s *Store) ToggleCartPanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartPanelOpen = !s.cartPanelOpen
}

func (s *Store) OpenAuthPanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authPanelOpen = true
}

func (s *Store) CloseAuthPanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authPanelOpen = false
}

// SetIdentity replaces the current identity wholesale. Only the auth bridge
// calls it. The first call, signed in or not, resolves the initial loading
// state; the transition is one-way for the process lifetime.
func (s *Store) SetIdentity(id *domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = id
	s.authResolved = true
	s.emit(domain.Event{Kind: domain.EventIdentityChanged, Identity: id})
}

func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

func (s *Store) CartPanelOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartPanelOpen
}

func (s *Store) AuthPanelOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authPanelOpen
}

// Identity returns the current identity and whether the auth bridge has
// delivered at least once. (nil, true) means resolved and signed out;
// (nil, false) means the first delivery has not arrived yet.
func (s *Store) Identity() (*domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, s.authResolved
}

// IsLoadingAuth is true only before the first identity delivery.
func (s *Store) IsLoadingAuth() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.authResolved
}
