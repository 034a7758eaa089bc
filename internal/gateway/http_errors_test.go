package gateway

import (
	"errors"
	"net/http"
	"testing"

	catalogapp "github.com/veltrix/storefront/internal/catalog/app"
	checkoutapp "github.com/veltrix/storefront/internal/checkout/app"
	"github.com/veltrix/storefront/internal/pricing"
)

func TestHTTPStatusFromServiceErrors(t *testing.T) {
	t.Run("invalid input -> 400", func(t *testing.T) {
		gotStatus, gotCode, _ := httpStatusFromGRPC(toStatus(catalogapp.ErrInvalidInput))
		if gotStatus != http.StatusBadRequest || gotCode != "INVALID_ARGUMENT" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("invalid coupon -> 400", func(t *testing.T) {
		gotStatus, gotCode, _ := httpStatusFromGRPC(toStatus(pricing.ErrInvalidCoupon))
		if gotStatus != http.StatusBadRequest || gotCode != "INVALID_ARGUMENT" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("not found -> 404", func(t *testing.T) {
		gotStatus, gotCode, _ := httpStatusFromGRPC(toStatus(catalogapp.ErrNotFound))
		if gotStatus != http.StatusNotFound || gotCode != "NOT_FOUND" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("empty cart -> 409", func(t *testing.T) {
		gotStatus, gotCode, _ := httpStatusFromGRPC(toStatus(checkoutapp.ErrEmptyCart))
		if gotStatus != http.StatusConflict || gotCode != "FAILED_PRECONDITION" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("checkout in progress -> 409", func(t *testing.T) {
		gotStatus, gotCode, _ := httpStatusFromGRPC(toStatus(checkoutapp.ErrCheckoutInProgress))
		if gotStatus != http.StatusConflict || gotCode != "ABORTED" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("payment failed -> 503", func(t *testing.T) {
		gotStatus, gotCode, _ := httpStatusFromGRPC(toStatus(checkoutapp.ErrPaymentFailed))
		if gotStatus != http.StatusServiceUnavailable || gotCode != "UNAVAILABLE" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("unrecognized error -> 500", func(t *testing.T) {
		gotStatus, gotCode, _ := httpStatusFromGRPC(toStatus(errors.New("boom")))
		if gotStatus != http.StatusInternalServerError || gotCode != "INTERNAL" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("non-grpc error straight through -> 500", func(t *testing.T) {
		gotStatus, gotCode, _ := httpStatusFromGRPC(errors.New("boom"))
		if gotStatus != http.StatusInternalServerError || gotCode != "INTERNAL" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})
}
