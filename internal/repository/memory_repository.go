package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Joebakid/Gudrix/internal/domain"
	"github.com/google/uuid"
)

// MemoryOrderStore keeps orders in process memory. It is for local runs and
// tests; orders are lost on restart.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]domain.CheckoutOrder
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]domain.CheckoutOrder)}
}

func (s *MemoryOrderStore) FindByReference(_ context.Context, reference string) (*domain.CheckoutOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[reference]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (s *MemoryOrderStore) Create(_ context.Context, order *domain.CheckoutOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.Reference]; exists {
		return ErrDuplicateReference
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	s.orders[order.Reference] = *cloneOrder(*order)
	return nil
}

func (s *MemoryOrderStore) List(_ context.Context, limit int) ([]*domain.CheckoutOrder, error) {
	s.mu.RLock()
	out := make([]*domain.CheckoutOrder, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, cloneOrder(o))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryOrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

func (s *MemoryOrderStore) Close() error {
	return nil
}

func cloneOrder(o domain.CheckoutOrder) *domain.CheckoutOrder {
	o.Cart = append([]domain.LineItem(nil), o.Cart...)
	return &o
}
