package checkout

import (
	"context"
	"sync"

	"github.com/Joebakid/Gudrix/internal/domain"
)

// mockGateway answers with the request's own reference unless told otherwise.
type mockGateway struct {
	mu        sync.Mutex
	requests  []PaymentRequest
	reference string
	err       error
	block     chan struct{}
}

func (m *mockGateway) InitiatePayment(ctx context.Context, req PaymentRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.err != nil {
		return "", m.err
	}
	if m.reference != "" {
		return m.reference, nil
	}
	return req.Reference, nil
}

type mockVerifier struct {
	mu       sync.Mutex
	requests []domain.VerificationRequest
	err      error
}

func (m *mockVerifier) Verify(_ context.Context, req domain.VerificationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.err
}

func (m *mockVerifier) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
