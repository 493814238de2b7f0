package notify

import (
	"context"
	"sync"
	"time"

	"github.com/Joebakid/Gudrix/internal/domain"
	"go.uber.org/zap"
)

const EventOrderPaid = "order.paid"

// Notifier tells the operator about a newly paid order.
type Notifier interface {
	NotifyOrderPaid(ctx context.Context, order *domain.CheckoutOrder) error
}

type Noop struct{}

func (Noop) NotifyOrderPaid(context.Context, *domain.CheckoutOrder) error { return nil }

// Async sends notifications in the background so they never delay or fail
// the caller. Failures are logged and dropped.
type Async struct {
	next    Notifier
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewAsync(next Notifier, timeout time.Duration, log *zap.Logger) *Async {
	return &Async{next: next, timeout: timeout, log: log}
}

func (a *Async) NotifyOrderPaid(_ context.Context, order *domain.CheckoutOrder) error {
	snapshot := *order
	snapshot.Cart = append([]domain.LineItem(nil), order.Cart...)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		// detached from the request; it may already be finished
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		if err := a.next.NotifyOrderPaid(ctx, &snapshot); err != nil {
			a.log.Warn("order notification failed",
				zap.String("reference", snapshot.Reference), zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until in-flight notifications finish.
func (a *Async) Wait() {
	a.wg.Wait()
}

// OrderPaidEvent is the payload published for each paid order.
type OrderPaidEvent struct {
	Type  string               `json:"type"`
	Order domain.CheckoutOrder `json:"order"`
}
