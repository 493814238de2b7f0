package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Joebakid/Gudrix/internal/cart"
	"github.com/Joebakid/Gudrix/internal/catalog"
	"github.com/Joebakid/Gudrix/internal/checkout"
	"github.com/Joebakid/Gudrix/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Catalog snapshots current product data into a cart line.
type Catalog interface {
	LineItem(ctx context.Context, productID string, variant *string, quantity int) (domain.LineItem, error)
}

type CartHandler struct {
	sessions *cart.Sessions
	catalog  Catalog
	guard    *checkout.Guard
	timeout  time.Duration
}

func NewCartHandler(sessions *cart.Sessions, catalog Catalog, guard *checkout.Guard, timeout time.Duration) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		catalog:  catalog,
		guard:    guard,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string  `json:"productId"`
	Variant   *string `json:"variant"`
	Quantity  int     `json:"quantity"`
}

// CartView is the cart with freshly computed totals and the guard state.
type CartView struct {
	Items           []domain.LineItem `json:"items"`
	TotalItems      int               `json:"totalItems"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	Waybill         decimal.Decimal   `json:"waybill"`
	Total           decimal.Decimal   `json:"total"`
	CheckoutAllowed bool              `json:"checkoutAllowed"`
	Message         string            `json:"message,omitempty"`
}

func (h *CartHandler) view(items []domain.LineItem) CartView {
	d := h.guard.Attempt(items)
	if items == nil {
		items = []domain.LineItem{}
	}
	return CartView{
		Items:           items,
		TotalItems:      d.Quote.TotalItems,
		Subtotal:        d.Quote.Subtotal,
		Waybill:         d.Quote.ShippingFee,
		Total:           d.Quote.Total,
		CheckoutAllowed: d.Allowed(),
		Message:         d.Message,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store := h.sessions.Get(getSessionID(r.Context()))
	respondJSON(w, http.StatusOK, h.view(store.Items()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBody)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	item, err := h.catalog.LineItem(ctx, req.ProductID, req.Variant, req.Quantity)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	store := h.sessions.Get(getSessionID(r.Context()))
	store.Add(item)
	respondJSON(w, http.StatusCreated, h.view(store.Items()))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}

	var variant *string
	if r.URL.Query().Has("variant") {
		v := r.URL.Query().Get("variant")
		variant = &v
	}

	store := h.sessions.Get(getSessionID(r.Context()))
	if !store.Remove(productID, variant) {
		respondError(w, http.StatusNotFound, "not_found", "item not in cart")
		return
	}
	respondJSON(w, http.StatusOK, h.view(store.Items()))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store := h.sessions.Get(getSessionID(r.Context()))
	store.Clear()
	respondJSON(w, http.StatusOK, h.view(nil))
}
