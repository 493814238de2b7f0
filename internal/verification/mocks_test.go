package verification

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Joebakid/Gudrix/internal/domain"
	"github.com/Joebakid/Gudrix/internal/paystack"
	"github.com/Joebakid/Gudrix/internal/repository"
)

type mockProvider struct {
	amount   int64
	currency string
	err      error
	delay    time.Duration
	calls    atomic.Int32
}

func (m *mockProvider) VerifyTransaction(_ context.Context, reference string) (*paystack.Transaction, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &paystack.Transaction{Status: "success", Reference: reference, Amount: m.amount, Currency: m.currency}, nil
}

// scriptedStore lets a test force each store outcome.
type scriptedStore struct {
	mu        sync.Mutex
	findErrs  []error
	found     *domain.CheckoutOrder
	createErr error
	created   []*domain.CheckoutOrder
}

func (s *scriptedStore) FindByReference(_ context.Context, _ string) (*domain.CheckoutOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.findErrs) > 0 {
		err := s.findErrs[0]
		s.findErrs = s.findErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if s.found == nil {
		return nil, repository.ErrOrderNotFound
	}
	return s.found, nil
}

func (s *scriptedStore) Create(_ context.Context, order *domain.CheckoutOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, order)
	return s.createErr
}

func (s *scriptedStore) List(context.Context, int) ([]*domain.CheckoutOrder, error) {
	return nil, nil
}

func (s *scriptedStore) Close() error { return nil }

type recordingNotifier struct {
	mu     sync.Mutex
	orders []string
	err    error
}

func (r *recordingNotifier) NotifyOrderPaid(_ context.Context, order *domain.CheckoutOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, order.Reference)
	return r.err
}

// gatedProvider holds every call until release is closed or the call's ctx ends.
type gatedProvider struct {
	amount  int64
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newGatedProvider(amount int64) *gatedProvider {
	return &gatedProvider{amount: amount, entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gatedProvider) VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error) {
	g.calls.Add(1)
	g.entered <- struct{}{}
	select {
	case <-g.release:
		return &paystack.Transaction{Status: "success", Reference: reference, Amount: g.amount, Currency: "NGN"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
