package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/Joebakid/Gudrix/internal/cart"
	"github.com/Joebakid/Gudrix/internal/domain"
	"github.com/Joebakid/Gudrix/internal/pricing"
	"go.uber.org/zap"
)

// Verifier submits a paid reference for server-side verification.
type Verifier interface {
	Verify(ctx context.Context, req domain.VerificationRequest) error
}

type Result struct {
	Reference string
	Quote     pricing.Quote
}

// Flow drives one client session through guard, payment and verification.
// The paid rows leave the cart only after verification succeeds; any failure
// leaves it intact.
type Flow struct {
	store    *cart.Store
	guard    *Guard
	gateway  Gateway
	verifier Verifier
	refs     *ReferenceGenerator
	currency string
	log      *zap.Logger

	inFlight atomic.Bool
}

func NewFlow(store *cart.Store, guard *Guard, gateway Gateway, verifier Verifier, currency string, log *zap.Logger) *Flow {
	return &Flow{
		store:    store,
		guard:    guard,
		gateway:  gateway,
		verifier: verifier,
		refs:     NewReferenceGenerator(),
		currency: currency,
		log:      log,
	}
}

// InFlight reports whether a checkout is waiting on the gateway or verification.
func (f *Flow) InFlight() bool {
	return f.inFlight.Load()
}

func (f *Flow) Checkout(ctx context.Context, customer domain.Customer) (*Result, error) {
	if err := ValidateCustomer(customer); err != nil {
		return nil, err
	}

	if !f.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInFlight
	}
	defer f.inFlight.Store(false)

	items := f.store.Items()
	decision := f.guard.Attempt(items)
	if !decision.Allowed() {
		return nil, &BlockedError{Message: decision.Message}
	}

	req := NewPaymentRequest(f.refs.Next(), decision.Quote.Total, f.currency, customer)
	reference, err := f.gateway.InitiatePayment(ctx, req)
	if err != nil {
		return nil, err
	}
	if reference != req.Reference {
		return nil, fmt.Errorf("%w: sent %s, got %s", ErrReferenceMismatched, req.Reference, reference)
	}

	err = f.verifier.Verify(ctx, domain.VerificationRequest{
		Reference: reference,
		Cart:      items,
		Subtotal:  decision.Quote.Subtotal,
		Waybill:   decision.Quote.ShippingFee,
		Total:     decision.Quote.Total,
		Customer:  customer,
	})
	if err != nil {
		f.log.Warn("payment verification failed, keeping cart",
			zap.String("reference", reference), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	f.store.Settle(items)
	f.log.Info("checkout completed", zap.String("reference", reference),
		zap.String("total", decision.Quote.Total.String()))

	return &Result{Reference: reference, Quote: decision.Quote}, nil
}

// ValidateCustomer requires the fields the payment widget and the operator need.
func ValidateCustomer(c domain.Customer) error {
	var missing []string
	if strings.TrimSpace(c.FullName) == "" {
		missing = append(missing, "fullName")
	}
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(c.Phone) == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrCustomerIncomplete, strings.Join(missing, ", "))
	}
	return nil
}
