// Package static serves the catalog from a fixed in-process list. The
// storefront has no product database: the list is defined at build time and
// read-only for the process lifetime.
package static

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/veltrix/storefront/internal/catalog/app"
	"github.com/veltrix/storefront/internal/catalog/domain"
)

type ProductRepo struct {
	products []domain.Product
	byID     map[int64]domain.Product
}

// NewProductRepo builds a repo over the given products, preserving order.
// With no argument list it would be empty; callers normally pass Seed().
func NewProductRepo(products []domain.Product) *ProductRepo {
	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	return &ProductRepo{
		products: products,
		byID:     byID,
	}
}

func (r *ProductRepo) Get(_ context.Context, id int64) (domain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return domain.Product{}, app.ErrNotFound
	}
	return p, nil
}

func (r *ProductRepo) List(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

// Seed returns the Veltrix launch catalog.
func Seed() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Wireless AirPods Pro", Category: "Electronics", Price: decimal.NewFromInt(249), Image: "/api/placeholder/400/400"},
		{ID: 2, Name: "Leather Wallet", Category: "Fashion", Price: decimal.NewFromInt(89), Image: "/api/placeholder/400/400"},
		{ID: 3, Name: "Smart Watch Ultra", Category: "Electronics", Price: decimal.NewFromInt(399), Image: "/api/placeholder/400/400"},
		{ID: 4, Name: "Running Shoes", Category: "Fashion", Price: decimal.NewFromInt(129), Image: "/api/placeholder/400/400"},
		{ID: 5, Name: "Mechanical Keyboard", Category: "Electronics", Price: decimal.NewFromInt(179), Image: "/api/placeholder/400/400"},
		{ID: 6, Name: "Backpack Pro", Category: "Fashion", Price: decimal.NewFromInt(99), Image: "/api/placeholder/400/400"},
	}
}
