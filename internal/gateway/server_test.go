package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authapp "github.com/veltrix/storefront/internal/auth/app"
	"github.com/veltrix/storefront/internal/auth/infra/devprovider"
	catalogapp "github.com/veltrix/storefront/internal/catalog/app"
	"github.com/veltrix/storefront/internal/catalog/infra/static"
	checkoutapp "github.com/veltrix/storefront/internal/checkout/app"
	"github.com/veltrix/storefront/internal/checkout/infra/adapter"
	"github.com/veltrix/storefront/internal/checkout/infra/stubpay"
	sessionapp "github.com/veltrix/storefront/internal/session/app"
	"github.com/veltrix/storefront/internal/session/domain"
	"github.com/veltrix/storefront/pkg/logger"
)

type fixture struct {
	srv      *httptest.Server
	store    *sessionapp.Store
	provider *devprovider.Provider
	payment  *stubpay.Provider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.Discard()
	store := sessionapp.NewStore(log)

	catalogSvc := catalogapp.NewService(static.NewProductRepo(static.Seed()))

	provider := devprovider.New(domain.Identity{DisplayName: "Ada", Email: "ada@example.com"})
	bridge := authapp.NewBridge(provider, store, log)

	payment := stubpay.New(time.Millisecond)
	checkoutSvc := checkoutapp.NewService(
		adapter.NewSessionCartReader(store),
		adapter.NewCatalogServiceReader(catalogSvc),
		payment,
		4,
		log,
	)

	srv := httptest.NewServer(NewServer(catalogSvc, store, bridge, checkoutSvc, log).Routes())
	t.Cleanup(srv.Close)

	return &fixture{srv: srv, store: store, provider: provider, payment: payment}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, f.srv.URL+path, &buf)
	require.NoError(t, err)

	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if resp.ContentLength != 0 && resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func TestProducts(t *testing.T) {
	f := newFixture(t)

	t.Run("list", func(t *testing.T) {
		resp, body := f.do(t, http.MethodGet, "/api/products", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, body["products"], 6)
	})

	t.Run("filter by category", func(t *testing.T) {
		resp, body := f.do(t, http.MethodGet, "/api/products?category=fashion", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, body["products"], 3)
	})

	t.Run("get by id", func(t *testing.T) {
		resp, body := f.do(t, http.MethodGet, "/api/products/3", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Smart Watch Ultra", body["name"])
	})

	t.Run("unknown id", func(t *testing.T) {
		resp, _ := f.do(t, http.MethodGet, "/api/products/42", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCartFlow(t *testing.T) {
	f := newFixture(t)

	add := func(id int64) map[string]any {
		resp, body := f.do(t, http.MethodPost, "/api/cart/items", map[string]any{"product_id": id})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return body
	}

	body := add(1)
	assert.Equal(t, "Wireless AirPods Pro added to cart!", body["message"])

	body = add(1)
	assert.Equal(t, "+1 Wireless AirPods Pro added!", body["message"])
	assert.Equal(t, float64(2), body["quantity"])

	add(3)

	resp, body := f.do(t, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["lines"], 2)
	assert.Equal(t, float64(3), body["total_items"])
	// 249*2 + 399 = 897 > 500, so the volume discount is on.
	assert.Equal(t, "897", body["subtotal"])
	assert.Equal(t, "134.55", body["discount"])
	assert.Equal(t, "762.45", body["total"])
	assert.Equal(t, "volume", body["policy"])

	// Drop one AirPods: subtotal falls to 648, discount still applies.
	resp, body = f.do(t, http.MethodPut, "/api/cart/items/1", map[string]any{"quantity": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "648", body["subtotal"])

	// Remove the watch: 249 is below the threshold, no discount.
	resp, body = f.do(t, http.MethodDelete, "/api/cart/items/3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "249", body["subtotal"])
	assert.Equal(t, "0", body["discount"])
	assert.Equal(t, "none", body["policy"])

	// Removing an id never added changes nothing and is not an error.
	resp, body = f.do(t, http.MethodDelete, "/api/cart/items/999", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total_items"])

	resp, body = f.do(t, http.MethodDelete, "/api/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["total_items"])
	assert.Equal(t, "0", body["total"])
}

func TestAddUnknownProduct(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.do(t, http.MethodPost, "/api/cart/items", map[string]any{"product_id": 42})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPanels(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/panels/cart/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["cart_panel_open"])

	// Both panels may be open at the same time.
	resp, body = f.do(t, http.MethodPost, "/api/panels/auth/open", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["cart_panel_open"])
	assert.Equal(t, true, body["auth_panel_open"])

	resp, body = f.do(t, http.MethodPost, "/api/panels/auth/close", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["auth_panel_open"])
}

func TestAuth(t *testing.T) {
	t.Run("session starts unresolved", func(t *testing.T) {
		f := newFixture(t)
		resp, body := f.do(t, http.MethodGet, "/api/session", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["is_loading_auth"])
		assert.Equal(t, false, body["signed_in"])
	})

	t.Run("sign in", func(t *testing.T) {
		f := newFixture(t)
		resp, body := f.do(t, http.MethodPost, "/api/auth/signin", map[string]any{"provider": "google"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "signed_in", body["status"])
		assert.Equal(t, "Welcome Ada!", body["message"])

		_, body = f.do(t, http.MethodGet, "/api/session", nil)
		assert.Equal(t, true, body["signed_in"])
		assert.Equal(t, false, body["is_loading_auth"])
	})

	t.Run("cancelled is silent", func(t *testing.T) {
		f := newFixture(t)
		f.provider.SetOutcome(devprovider.OutcomeCancelled, nil)
		resp, body := f.do(t, http.MethodPost, "/api/auth/signin", map[string]any{"provider": "github"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "cancelled", body["status"])
	})

	t.Run("popup blocked has a dedicated message", func(t *testing.T) {
		f := newFixture(t)
		f.provider.SetOutcome(devprovider.OutcomeBlocked, nil)
		resp, body := f.do(t, http.MethodPost, "/api/auth/signin", map[string]any{"provider": "google"})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		errObj := body["error"].(map[string]any)
		assert.Equal(t, "POPUP_BLOCKED", errObj["code"])
	})

	t.Run("unknown provider", func(t *testing.T) {
		f := newFixture(t)
		resp, _ := f.do(t, http.MethodPost, "/api/auth/signin", map[string]any{"provider": "myspace"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("sign out", func(t *testing.T) {
		f := newFixture(t)
		f.do(t, http.MethodPost, "/api/auth/signin", map[string]any{"provider": "google"})
		resp, body := f.do(t, http.MethodPost, "/api/auth/signout", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, false, body["signed_in"])
		// Resolved stays resolved after sign-out.
		assert.Equal(t, false, body["is_loading_auth"])
	})
}

func TestCheckout(t *testing.T) {
	seed := func(f *fixture) {
		for _, id := range []int64{1, 1, 3} {
			resp, _ := f.do(t, http.MethodPost, "/api/cart/items", map[string]any{"product_id": id})
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}
	}

	t.Run("quote without coupon", func(t *testing.T) {
		f := newFixture(t)
		seed(f)
		resp, body := f.do(t, http.MethodPost, "/api/checkout/quote", map[string]any{})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "897", body["subtotal"])
		assert.Equal(t, "0", body["discount"])
		assert.Equal(t, "none", body["policy"])
	})

	t.Run("quote with coupon", func(t *testing.T) {
		f := newFixture(t)
		seed(f)
		resp, body := f.do(t, http.MethodPost, "/api/checkout/quote", map[string]any{"coupon_code": "veltrix2025"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "coupon", body["policy"])
		assert.Equal(t, "179.4", body["discount"])
		assert.Equal(t, "717.6", body["total"])
	})

	t.Run("bad coupon", func(t *testing.T) {
		f := newFixture(t)
		seed(f)
		resp, _ := f.do(t, http.MethodPost, "/api/checkout/quote", map[string]any{"coupon_code": "SAVE50"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newFixture(t)
		resp, _ := f.do(t, http.MethodPost, "/api/checkout/quote", map[string]any{})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("pay settles and clears the cart", func(t *testing.T) {
		f := newFixture(t)
		seed(f)
		resp, body := f.do(t, http.MethodPost, "/api/checkout/pay", map[string]any{})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "PAID", body["status"])
		assert.NotEmpty(t, body["order_id"])

		_, cart := f.do(t, http.MethodGet, "/api/cart", nil)
		assert.Equal(t, float64(0), cart["total_items"])
	})

	t.Run("payment failure keeps the cart", func(t *testing.T) {
		f := newFixture(t)
		seed(f)
		f.payment.FailNext(fmt.Errorf("card declined"))

		resp, _ := f.do(t, http.MethodPost, "/api/checkout/pay", map[string]any{})
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		_, cart := f.do(t, http.MethodGet, "/api/cart", nil)
		assert.Equal(t, float64(3), cart["total_items"])
	})
}
