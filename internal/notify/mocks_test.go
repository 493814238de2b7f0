package notify

import (
	"context"
	"sync"

	"github.com/Joebakid/Gudrix/internal/domain"
)

type recordingNotifier struct {
	mu     sync.Mutex
	orders []domain.CheckoutOrder
	err    error
	ch     chan domain.CheckoutOrder
}

func (r *recordingNotifier) NotifyOrderPaid(_ context.Context, order *domain.CheckoutOrder) error {
	r.mu.Lock()
	r.orders = append(r.orders, *order)
	r.mu.Unlock()
	if r.ch != nil {
		r.ch <- *order
	}
	return r.err
}

func (r *recordingNotifier) received() []domain.CheckoutOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.CheckoutOrder(nil), r.orders...)
}
