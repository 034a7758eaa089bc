package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/veltrix/storefront/internal/checkout/domain"
	"github.com/veltrix/storefront/internal/pricing"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPaymentFailed leaves the cart untouched so the user can retry
	// without re-entering items.
	ErrPaymentFailed = errors.New("payment failed")
	// ErrCheckoutInProgress rejects a second submit while one is pending.
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

type Service struct {
	cart    CartReader
	catalog CatalogReader
	payment PaymentProvider

	maxConcurrent int

	mu     sync.Mutex
	paying bool

	log *slog.Logger
}

func NewService(cart CartReader, catalog CatalogReader, payment PaymentProvider, maxConcurrent int, log *slog.Logger) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	return &Service{
		cart:          cart,
		catalog:       catalog,
		payment:       payment,
		maxConcurrent: maxConcurrent,
		log:           log,
	}
}

// Quote prices the current cart. couponCode selects the coupon policy; when
// blank the quote stays undiscounted, matching the checkout view (the cart
// preview's volume discount is a separate policy and never composes here).
func (s *Service) Quote(ctx context.Context, couponCode string) (domain.Quote, error) {
	items, err := s.cart.Items(ctx)
	if err != nil {
		return domain.Quote{}, err
	}

	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		g.Go(func() error {
			it := items[idx]
			if it.Quantity <= 0 {
				return fmt.Errorf("quantity must be greater than zero: %d", it.Quantity)
			}

			product, err := s.catalog.GetProduct(ctx, it.ProductID)
			if err != nil {
				return fmt.Errorf("failed to get product %d: %w", it.ProductID, err)
			}

			qty := decimal.NewFromInt(int64(it.Quantity))
			lines[idx] = domain.QuoteLine{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  it.Quantity,
				UnitPrice: product.Price,
				LineTotal: product.Price.Mul(qty),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal)
	}

	breakdown, err := pricing.Coupon(subtotal, couponCode)
	if err != nil {
		return domain.Quote{}, err
	}

	return domain.Quote{
		Lines:    lines,
		Subtotal: breakdown.Subtotal,
		Discount: breakdown.Discount,
		Total:    breakdown.Total,
		Policy:   breakdown.Policy,
	}, nil
}

// Pay settles the current cart through the payment provider. The suspend
// window is guarded: a second call while one is pending is rejected rather
// than queued. On success the cart is cleared; on failure it is preserved.
func (s *Service) Pay(ctx context.Context, couponCode string) (domain.Order, error) {
	s.mu.Lock()
	if s.paying {
		s.mu.Unlock()
		return domain.Order{}, ErrCheckoutInProgress
	}
	s.paying = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.paying = false
		s.mu.Unlock()
	}()

	quote, err := s.Quote(ctx, couponCode)
	if err != nil {
		return domain.Order{}, err
	}

	sessionID, err := s.payment.CreateSession(ctx, quote)
	if err != nil {
		s.log.Error("payment session failed", slog.Any("err", err))
		return domain.Order{}, errors.Join(ErrPaymentFailed, err)
	}

	if err := s.payment.Pay(ctx, sessionID); err != nil {
		s.log.Error("payment failed", slog.String("session_id", sessionID), slog.Any("err", err))
		return domain.Order{}, errors.Join(ErrPaymentFailed, err)
	}

	order := domain.Order{
		ID:          uuid.NewString(),
		Status:      domain.OrderStatusPaid,
		Lines:       quote.Lines,
		Subtotal:    quote.Subtotal,
		Discount:    quote.Discount,
		TotalAmount: quote.Total,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.cart.Clear(ctx); err != nil {
		// The payment settled; a stale cart is a nuisance, not a failure.
		s.log.Warn("cart clear after payment failed", slog.Any("err", err))
	}

	s.log.Info("order settled",
		slog.String("order_id", order.ID),
		slog.String("total", order.TotalAmount.String()),
		slog.String("session_id", sessionID),
	)
	return order, nil
}
