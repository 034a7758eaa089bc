// Package gateway is the HTTP edge the storefront UI talks to. It owns no
// state: every handler reads from or commands the owning services and maps
// their errors onto the wire.
package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	authapp "github.com/veltrix/storefront/internal/auth/app"
	catalogapp "github.com/veltrix/storefront/internal/catalog/app"
	checkoutapp "github.com/veltrix/storefront/internal/checkout/app"
	checkoutdomain "github.com/veltrix/storefront/internal/checkout/domain"
	"github.com/veltrix/storefront/internal/pricing"
	sessionapp "github.com/veltrix/storefront/internal/session/app"
	"github.com/veltrix/storefront/internal/session/domain"
)

type Server struct {
	catalog  *catalogapp.Service
	store    *sessionapp.Store
	bridge   *authapp.Bridge
	checkout *checkoutapp.Service
	log      *slog.Logger
}

func NewServer(catalog *catalogapp.Service, store *sessionapp.Store, bridge *authapp.Bridge, checkout *checkoutapp.Service, log *slog.Logger) *Server {
	s := &Server{
		catalog:  catalog,
		store:    store,
		bridge:   bridge,
		checkout: checkout,
		log:      log,
	}

	// The store's event feed is the backend analogue of the UI toasts.
	store.Subscribe(func(ev domain.Event) {
		log.Info("store event",
			slog.String("kind", string(ev.Kind)),
			slog.Int64("product_id", ev.ProductID),
			slog.String("message", toastMessage(ev)),
		)
	})

	return s
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	mux.HandleFunc("GET /api/products", s.listProducts)
	mux.HandleFunc("GET /api/products/{id}", s.getProduct)

	mux.HandleFunc("GET /api/cart", s.getCart)
	mux.HandleFunc("POST /api/cart/items", s.addToCart)
	mux.HandleFunc("PUT /api/cart/items/{id}", s.updateQuantity)
	mux.HandleFunc("DELETE /api/cart/items/{id}", s.removeFromCart)
	mux.HandleFunc("DELETE /api/cart", s.clearCart)

	mux.HandleFunc("POST /api/panels/cart/toggle", s.toggleCartPanel)
	mux.HandleFunc("POST /api/panels/auth/open", s.openAuthPanel)
	mux.HandleFunc("POST /api/panels/auth/close", s.closeAuthPanel)

	mux.HandleFunc("GET /api/session", s.getSession)
	mux.HandleFunc("POST /api/auth/signin", s.signIn)
	mux.HandleFunc("POST /api/auth/signout", s.signOut)

	mux.HandleFunc("POST /api/checkout/quote", s.quote)
	mux.HandleFunc("POST /api/checkout/pay", s.pay)

	return mux
}

type productDTO struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.ListByCategory(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		out = append(out, productDTO{ID: p.ID, Name: p.Name, Category: p.Category, Price: p.Price, Image: p.Image})
	}
	writeJSON(w, http.StatusOK, struct {
		Products []productDTO `json:"products"`
	}{Products: out})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, catalogapp.ErrInvalidInput)
		return
	}

	p, err := s.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, productDTO{ID: p.ID, Name: p.Name, Category: p.Category, Price: p.Price, Image: p.Image})
}

type cartLineDTO struct {
	Product   productDTO      `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type cartDTO struct {
	Lines      []cartLineDTO   `json:"lines"`
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	Policy     string          `json:"policy"`
}

// cartView renders the cart preview; the drawer's 15% volume discount is
// applied here, never the coupon (that belongs to checkout).
func (s *Server) cartView() cartDTO {
	lines := s.store.Lines()

	out := make([]cartLineDTO, 0, len(lines))
	for _, l := range lines {
		p := l.Product
		out = append(out, cartLineDTO{
			Product:   productDTO{ID: p.ID, Name: p.Name, Category: p.Category, Price: p.Price, Image: p.Image},
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal(),
		})
	}

	b := pricing.Volume(s.store.TotalPrice())
	return cartDTO{
		Lines:      out,
		TotalItems: s.store.TotalItems(),
		Subtotal:   b.Subtotal,
		Discount:   b.Discount,
		Total:      b.Total,
		Policy:     b.Policy,
	}
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cartView())
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64 `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, catalogapp.ErrInvalidInput)
		return
	}

	p, err := s.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}

	line, created := s.store.AddToCart(p)

	msg := fmt.Sprintf("+1 %s added!", p.Name)
	if created {
		msg = fmt.Sprintf("%s added to cart!", p.Name)
	}
	writeJSON(w, http.StatusOK, struct {
		Message  string  `json:"message"`
		Quantity int     `json:"quantity"`
		Cart     cartDTO `json:"cart"`
	}{Message: msg, Quantity: line.Quantity, Cart: s.cartView()})
}

func (s *Server) updateQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, catalogapp.ErrInvalidInput)
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, catalogapp.ErrInvalidInput)
		return
	}

	s.store.UpdateQuantity(id, req.Quantity)
	writeJSON(w, http.StatusOK, s.cartView())
}

func (s *Server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, catalogapp.ErrInvalidInput)
		return
	}

	// Removing an id that was never added is fine; the view is unchanged.
	s.store.RemoveFromCart(id)
	writeJSON(w, http.StatusOK, s.cartView())
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.store.ClearCart()
	writeJSON(w, http.StatusOK, s.cartView())
}

func (s *Server) toggleCartPanel(w http.ResponseWriter, r *http.Request) {
	s.store.ToggleCartPanel()
	s.writeSession(w)
}

func (s *Server) openAuthPanel(w http.ResponseWriter, r *http.Request) {
	s.store.OpenAuthPanel()
	s.writeSession(w)
}

func (s *Server) closeAuthPanel(w http.ResponseWriter, r *http.Request) {
	s.store.CloseAuthPanel()
	s.writeSession(w)
}

type identityDTO struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photo_url"`
}

type sessionDTO struct {
	SignedIn      bool         `json:"signed_in"`
	Identity      *identityDTO `json:"identity,omitempty"`
	IsLoadingAuth bool         `json:"is_loading_auth"`
	CartPanelOpen bool         `json:"cart_panel_open"`
	AuthPanelOpen bool         `json:"auth_panel_open"`
}

func (s *Server) writeSession(w http.ResponseWriter) {
	id, resolved := s.store.Identity()

	view := sessionDTO{
		SignedIn:      id != nil,
		IsLoadingAuth: !resolved,
		CartPanelOpen: s.store.CartPanelOpen(),
		AuthPanelOpen: s.store.AuthPanelOpen(),
	}
	if id != nil {
		view.Identity = &identityDTO{DisplayName: id.DisplayName, Email: id.Email, PhotoURL: id.PhotoURL}
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.writeSession(w)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, catalogapp.ErrInvalidInput)
		return
	}

	id, err := s.bridge.SignIn(r.Context(), authapp.ProviderKind(req.Provider))
	switch {
	case err == nil:
		name := id.DisplayName
		if name == "" {
			name = "VIP"
		}
		writeJSON(w, http.StatusOK, struct {
			Status   string      `json:"status"`
			Message  string      `json:"message"`
			Identity identityDTO `json:"identity"`
		}{
			Status:   "signed_in",
			Message:  fmt.Sprintf("Welcome %s!", name),
			Identity: identityDTO{DisplayName: id.DisplayName, Email: id.Email, PhotoURL: id.PhotoURL},
		})
	case errors.Is(err, authapp.ErrCancelled):
		// User closed the flow: not an error, nothing to surface.
		writeJSON(w, http.StatusOK, struct {
			Status string `json:"status"`
		}{Status: "cancelled"})
	case errors.Is(err, authapp.ErrPopupBlocked):
		writeJSON(w, http.StatusConflict, struct {
			Error errorBody `json:"error"`
		}{Error: errorBody{Code: "POPUP_BLOCKED", Message: "Popup blocked! Please allow popups and try again."}})
	default:
		writeError(w, err)
	}
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	if err := s.bridge.SignOut(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	s.writeSession(w)
}

type quoteLineDTO struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type quoteDTO struct {
	Lines    []quoteLineDTO  `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
	Policy   string          `json:"policy"`
}

func toQuoteDTO(q checkoutdomain.Quote) quoteDTO {
	lines := make([]quoteLineDTO, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, quoteLineDTO{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	return quoteDTO{Lines: lines, Subtotal: q.Subtotal, Discount: q.Discount, Total: q.Total, Policy: q.Policy}
}

func (s *Server) quote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CouponCode string `json:"coupon_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, catalogapp.ErrInvalidInput)
		return
	}

	q, err := s.checkout.Quote(r.Context(), req.CouponCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteDTO(q))
}

func (s *Server) pay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CouponCode string `json:"coupon_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, catalogapp.ErrInvalidInput)
		return
	}

	order, err := s.checkout.Pay(r.Context(), req.CouponCode)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message  string          `json:"message"`
		OrderID  string          `json:"order_id"`
		Status   string          `json:"status"`
		Subtotal decimal.Decimal `json:"subtotal"`
		Discount decimal.Decimal `json:"discount"`
		Total    decimal.Decimal `json:"total"`
	}{
		Message:  "Payment successful! Welcome to the family",
		OrderID:  order.ID,
		Status:   order.Status,
		Subtotal: order.Subtotal,
		Discount: order.Discount,
		Total:    order.TotalAmount,
	})
}

func toastMessage(ev domain.Event) string {
	switch ev.Kind {
	case domain.EventItemAdded:
		return fmt.Sprintf("%s added to cart!", ev.ProductName)
	case domain.EventItemIncremented:
		return fmt.Sprintf("+1 %s added!", ev.ProductName)
	case domain.EventItemRemoved:
		return fmt.Sprintf("%s removed", ev.ProductName)
	case domain.EventCartCleared:
		return "Cart cleared"
	case domain.EventIdentityChanged:
		if ev.Identity != nil {
			return fmt.Sprintf("Welcome %s!", ev.Identity.DisplayName)
		}
		return "Signed out"
	default:
		return ""
	}
}
