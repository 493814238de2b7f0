package http

import (
	"encoding/json"
	"net/http"

	"github.com/Joebakid/Gudrix/internal/cart"
	"github.com/Joebakid/Gudrix/internal/checkout"
	"github.com/Joebakid/Gudrix/internal/domain"
	"github.com/Joebakid/Gudrix/internal/pricing"
)

// CheckoutHandler evaluates the guard against the session cart at request
// time and hands the browser what the payment widget needs.
type CheckoutHandler struct {
	sessions *cart.Sessions
	guard    *checkout.Guard
	refs     *checkout.ReferenceGenerator
	currency string
}

func NewCheckoutHandler(sessions *cart.Sessions, guard *checkout.Guard, currency string) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		guard:    guard,
		refs:     checkout.NewReferenceGenerator(),
		currency: currency,
	}
}

type CheckoutRequestDTO struct {
	Customer domain.Customer `json:"customer"`
}

type CheckoutResponseDTO struct {
	Payment checkout.PaymentRequest `json:"payment"`
	Quote   pricing.Quote           `json:"quote"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBody)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := checkout.ValidateCustomer(req.Customer); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_customer", err.Error())
		return
	}

	store := h.sessions.Get(getSessionID(r.Context()))
	decision := h.guard.Attempt(store.Items())
	if !decision.Allowed() {
		respondError(w, http.StatusUnprocessableEntity, "checkout_blocked", decision.Message)
		return
	}

	payment := checkout.NewPaymentRequest(h.refs.Next(), decision.Quote.Total, h.currency, req.Customer)
	respondJSON(w, http.StatusOK, CheckoutResponseDTO{Payment: payment, Quote: decision.Quote})
}
