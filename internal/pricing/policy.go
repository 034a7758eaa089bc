// Package pricing holds the storefront's two discount policies. The cart
// preview applies the volume policy; checkout applies the coupon policy. The
// two never compose in the same breakdown.
package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	PolicyNone   = "none"
	PolicyVolume = "volume"
	PolicyCoupon = "coupon"

	// CouponCode is the one accepted code, compared case-insensitively.
	CouponCode = "VELTRIX2025"
)

var (
	volumeThreshold = decimal.NewFromInt(500)
	volumeRate      = decimal.NewFromFloat(0.15)
	couponRate      = decimal.NewFromFloat(0.20)
)

var ErrInvalidCoupon = errors.New("invalid coupon code")

// Breakdown is the priced result shown to the user.
type Breakdown struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	Policy   string
}

// Volume applies the 15% discount iff the subtotal strictly exceeds 500.
// At exactly 500.00 no discount applies.
func Volume(subtotal decimal.Decimal) Breakdown {
	if subtotal.GreaterThan(volumeThreshold) {
		discount := subtotal.Mul(volumeRate)
		return Breakdown{
			Subtotal: subtotal,
			Discount: discount,
			Total:    subtotal.Sub(discount),
			Policy:   PolicyVolume,
		}
	}
	return Breakdown{Subtotal: subtotal, Discount: decimal.Zero, Total: subtotal, Policy: PolicyNone}
}

// Coupon applies the flat 20% discount iff code matches CouponCode. A blank
// code means no coupon was attempted; any other mismatch is ErrInvalidCoupon.
func Coupon(subtotal decimal.Decimal, code string) (Breakdown, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Breakdown{Subtotal: subtotal, Discount: decimal.Zero, Total: subtotal, Policy: PolicyNone}, nil
	}
	if !strings.EqualFold(code, CouponCode) {
		return Breakdown{}, ErrInvalidCoupon
	}

	discount := subtotal.Mul(couponRate)
	return Breakdown{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
		Policy:   PolicyCoupon,
	}, nil
}
