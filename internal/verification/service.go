package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Joebakid/Gudrix/internal/checkout"
	"github.com/Joebakid/Gudrix/internal/domain"
	"github.com/Joebakid/Gudrix/internal/notify"
	"github.com/Joebakid/Gudrix/internal/paystack"
	"github.com/Joebakid/Gudrix/internal/pricing"
	"github.com/Joebakid/Gudrix/internal/repository"
	"github.com/Joebakid/Gudrix/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Outcome is a successful verification. Duplicate is set when the order was
// already recorded by an earlier call for the same reference.
type Outcome struct {
	Order     *domain.CheckoutOrder
	Duplicate bool
}

const defaultTimeout = 30 * time.Second

type Service struct {
	provider paystack.TransactionVerifier
	orders   repository.OrderStore
	engine   *pricing.Engine
	notifier notify.Notifier
	currency string
	timeout  time.Duration
	now      func() time.Time
	log      *zap.Logger
	sfg      singleflight.Group // one provider round trip per reference and total
}

func NewService(
	provider paystack.TransactionVerifier,
	orders repository.OrderStore,
	engine *pricing.Engine,
	notifier notify.Notifier,
	currency string,
	timeout time.Duration,
	log *zap.Logger,
) *Service {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		provider: provider,
		orders:   orders,
		engine:   engine,
		notifier: notifier,
		currency: currency,
		timeout:  timeout,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

// Verify confirms a payment with the provider and records its order exactly
// once. Nothing is written unless every check passes.
func (s *Service) Verify(ctx context.Context, req domain.VerificationRequest) (*Outcome, error) {
	req.Reference = strings.TrimSpace(req.Reference)
	if req.Reference == "" {
		return nil, ErrMissingReference
	}
	log := logger.FromContext(ctx, s.log).With(zap.String("reference", req.Reference))

	if err := s.checkTotals(req); err != nil {
		log.Info("rejecting inconsistent verification request", zap.Error(err))
		return nil, err
	}

	key := req.Reference + "|" + req.Total.String()
	// The shared call outlives any single caller; each caller stops waiting
	// on its own deadline.
	ch := s.sfg.DoChan(key, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.verify(fctx, log, req)
	})

	select {
	case <-ctx.Done():
		log.Info("caller gave up waiting for verification", zap.Error(ctx.Err()))
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Debug("verification coalesced with a concurrent call")
		}
		return res.Val.(*Outcome), nil
	}
}

func (s *Service) verify(ctx context.Context, log *zap.Logger, req domain.VerificationRequest) (*Outcome, error) {
	tx, err := s.provider.VerifyTransaction(ctx, req.Reference)
	if err != nil {
		log.Warn("provider verification failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrProviderRejected, err)
	}

	paid := checkout.FromMinorUnits(tx.Amount)
	if tx.Amount != checkout.ToMinorUnits(req.Total) {
		log.Error("paid amount does not match declared total, possible tampering",
			zap.String("paid", paid.String()),
			zap.String("declared", req.Total.String()),
			zap.String("customer_email", req.Customer.Email))
		return nil, fmt.Errorf("%w: paid %s, declared %s", ErrAmountMismatch, paid, req.Total)
	}
	if tx.Currency != "" && !strings.EqualFold(tx.Currency, s.currency) {
		log.Error("paid currency does not match store currency, possible tampering",
			zap.String("paid_currency", tx.Currency))
		return nil, fmt.Errorf("%w: paid in %s", ErrAmountMismatch, tx.Currency)
	}

	existing, err := s.orders.FindByReference(ctx, req.Reference)
	if err == nil {
		log.Info("order already recorded for reference", zap.String("order_id", existing.ID))
		return &Outcome{Order: existing, Duplicate: true}, nil
	}
	if !errors.Is(err, repository.ErrOrderNotFound) {
		log.Error("order lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: find order: %w", ErrInternal, err)
	}

	order := &domain.CheckoutOrder{
		Reference:     req.Reference,
		Cart:          req.Cart,
		Subtotal:      req.Subtotal,
		ShippingFee:   req.Waybill,
		Total:         req.Total,
		Currency:      s.currency,
		Customer:      req.Customer,
		Status:        domain.OrderStatusPaid,
		PaymentMethod: domain.PaymentMethodPaystack,
		CreatedAt:     s.now(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateReference) {
			return s.recordedByOther(ctx, log, req.Reference)
		}
		log.Error("order write failed", zap.Error(err))
		return nil, fmt.Errorf("%w: create order: %w", ErrInternal, err)
	}
	log.Info("order recorded", zap.String("order_id", order.ID), zap.String("total", order.Total.String()))

	if err := s.notifier.NotifyOrderPaid(ctx, order); err != nil {
		log.Warn("order notification failed", zap.Error(err))
	}
	return &Outcome{Order: order}, nil
}

// recordedByOther handles losing an insert race: another call committed the
// order between our lookup and our insert.
func (s *Service) recordedByOther(ctx context.Context, log *zap.Logger, reference string) (*Outcome, error) {
	existing, err := s.orders.FindByReference(ctx, reference)
	if err != nil {
		log.Error("order lookup after duplicate insert failed", zap.Error(err))
		return nil, fmt.Errorf("%w: find order: %w", ErrInternal, err)
	}
	log.Info("order recorded concurrently for reference", zap.String("order_id", existing.ID))
	return &Outcome{Order: existing, Duplicate: true}, nil
}

// checkTotals recomputes the quote from the submitted cart. It runs before any
// provider call.
func (s *Service) checkTotals(req domain.VerificationRequest) error {
	if len(req.Cart) == 0 {
		return ErrEmptyCart
	}
	// anything finer than the minor unit cannot match what the provider charged
	if !req.Total.Equal(req.Total.Round(2)) {
		return fmt.Errorf("%w: total %s is finer than the minor unit", ErrTotalsMismatch, req.Total)
	}
	q := s.engine.Quote(req.Cart)
	switch {
	case !q.Subtotal.Equal(req.Subtotal):
		return fmt.Errorf("%w: subtotal %s, expected %s", ErrTotalsMismatch, req.Subtotal, q.Subtotal)
	case !q.ShippingFee.Equal(req.Waybill):
		return fmt.Errorf("%w: waybill %s, expected %s", ErrTotalsMismatch, req.Waybill, q.ShippingFee)
	case !q.Total.Equal(req.Total):
		return fmt.Errorf("%w: total %s, expected %s", ErrTotalsMismatch, req.Total, q.Total)
	}
	return nil
}
