package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Joebakid/Gudrix/internal/domain"
)

type OrderLister interface {
	List(ctx context.Context, limit int) ([]*domain.CheckoutOrder, error)
}

type OrdersHandler struct {
	orders  OrderLister
	timeout time.Duration
}

func NewOrdersHandler(orders OrderLister, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{orders: orders, timeout: timeout}
}

type OrdersResponseDTO struct {
	Orders []*domain.CheckoutOrder `json:"orders"`
}

const maxOrdersPage = 200

// ListOrders returns recorded orders, newest first.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxOrdersPage {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	orders, err := h.orders.List(ctx, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if orders == nil {
		orders = []*domain.CheckoutOrder{}
	}
	respondJSON(w, http.StatusOK, OrdersResponseDTO{Orders: orders})
}
