package paystack

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Joebakid/Gudrix/internal/checkout"
)

// Decider picks the provider status for a simulated charge.
type Decider func(req checkout.PaymentRequest) string

func AlwaysSucceed(checkout.PaymentRequest) string { return "success" }

// SuccessRate approves pct percent of charges at random.
func SuccessRate(pct int) Decider {
	return func(checkout.PaymentRequest) string {
		if rand.Intn(100) < pct {
			return "success"
		}
		return "failed"
	}
}

// Sandbox stands in for the provider when PAYSTACK_SANDBOX is set and in
// tests. It is both the payment widget (checkout.Gateway, or POST /charge for
// a browser) and the verification API.
type Sandbox struct {
	mu      sync.Mutex
	charges map[string]Transaction
	decide  Decider
}

func NewSandbox(decide Decider) *Sandbox {
	if decide == nil {
		decide = AlwaysSucceed
	}
	return &Sandbox{charges: make(map[string]Transaction), decide: decide}
}

func (s *Sandbox) InitiatePayment(ctx context.Context, req checkout.PaymentRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charges[req.Reference] = Transaction{
		Status:    s.decide(req),
		Reference: req.Reference,
		Amount:    req.Amount,
		Currency:  req.Currency,
		PaidAt:    time.Now().UTC().Format(time.RFC3339),
	}
	return req.Reference, nil
}

// SetAmount overrides what the provider reports as paid for a reference.
func (s *Sandbox) SetAmount(reference string, amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx, ok := s.charges[reference]; ok {
		tx.Amount = amount
		s.charges[reference] = tx
	}
}

func (s *Sandbox) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// the widget side is public; only verification needs the secret key
	if r.URL.Path == "/charge" && r.Method == http.MethodPost {
		s.charge(w, r)
		return
	}

	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(verifyResponse{Message: "No Authorization header was found"})
		return
	}

	reference, ok := strings.CutPrefix(r.URL.Path, "/transaction/verify/")
	if r.Method != http.MethodGet || !ok || reference == "" {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(verifyResponse{Message: "Not found"})
		return
	}

	s.mu.Lock()
	tx, found := s.charges[reference]
	s.mu.Unlock()
	if !found {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(verifyResponse{Message: "Transaction reference not found"})
		return
	}

	json.NewEncoder(w).Encode(verifyResponse{Status: true, Message: "Verification successful", Data: tx})
}

type chargeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

func (s *Sandbox) charge(w http.ResponseWriter, r *http.Request) {
	var req checkout.PaymentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil || req.Reference == "" || req.Amount <= 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(chargeResponse{Message: "reference and amount are required"})
		return
	}

	ref, err := s.InitiatePayment(r.Context(), req)
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(chargeResponse{Message: err.Error()})
		return
	}

	var resp chargeResponse
	resp.Status = true
	resp.Message = "Charge attempted"
	resp.Data.Reference = ref
	json.NewEncoder(w).Encode(resp)
}
