package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Joebakid/Gudrix/internal/cart"
	"github.com/Joebakid/Gudrix/internal/domain"
	"github.com/Joebakid/Gudrix/internal/verification"
	"github.com/Joebakid/Gudrix/pkg/logger"
	"go.uber.org/zap"
)

type Verifier interface {
	Verify(ctx context.Context, req domain.VerificationRequest) (*verification.Outcome, error)
}

type successResponse struct {
	Success bool `json:"success"`
}

// VerifyHandler serves the payment verification endpoint. Every answer is
// {"success": bool}; the status code tells failures apart.
type VerifyHandler struct {
	verifier Verifier
	sessions *cart.Sessions
	maxBody  int64
	timeout  time.Duration
	log      *zap.Logger
}

func NewVerifyHandler(verifier Verifier, sessions *cart.Sessions, maxBody int64, timeout time.Duration, log *zap.Logger) *VerifyHandler {
	return &VerifyHandler{
		verifier: verifier,
		sessions: sessions,
		maxBody:  maxBody,
		timeout:  timeout,
		log:      log,
	}
}

func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respondJSON(w, http.StatusMethodNotAllowed, successResponse{Success: false})
		return
	}

	var req domain.VerificationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody)).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, successResponse{Success: false})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	log := logger.FromContext(r.Context(), h.log).With(
		zap.String("reference", req.Reference),
		zap.String("request_id", getRequestID(r.Context())))

	out, err := h.verifier.Verify(ctx, req)
	if err != nil {
		if verification.IsClientError(err) {
			log.Info("verification rejected", zap.Error(err))
			respondJSON(w, http.StatusBadRequest, successResponse{Success: false})
			return
		}
		log.Error("verification failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, successResponse{Success: false})
		return
	}

	if id, ok := sessionIDFromCookie(r); ok && h.sessions != nil {
		if store, found := h.sessions.Lookup(id); found {
			store.Settle(req.Cart)
		}
	}

	log.Info("payment verified", zap.Bool("duplicate", out.Duplicate))
	respondJSON(w, http.StatusOK, successResponse{Success: true})
}
