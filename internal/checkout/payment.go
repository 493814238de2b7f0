package checkout

import (
	"context"
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/Joebakid/Gudrix/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

var ErrPaymentCancelled = errors.New("payment cancelled by user")

// PaymentRequest is handed to the payment widget. Amount is in the
// provider's minor unit (kobo for NGN).
type PaymentRequest struct {
	Reference string            `json:"reference"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Email     string            `json:"email"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Gateway opens the third-party payment widget. It returns the reference the
// provider confirmed, or ErrPaymentCancelled when the user closes the widget.
type Gateway interface {
	InitiatePayment(ctx context.Context, req PaymentRequest) (string, error)
}

// ToMinorUnits converts a major-unit amount to the provider's minor unit, rounding half up.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// ReferenceGenerator issues ULID payment references: millisecond timestamp
// plus monotonic entropy, so references sort by creation and never repeat
// within a process.
type ReferenceGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

func (g *ReferenceGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}

func NewPaymentRequest(reference string, total decimal.Decimal, currency string, customer domain.Customer) PaymentRequest {
	return PaymentRequest{
		Reference: reference,
		Amount:    ToMinorUnits(total),
		Currency:  currency,
		Email:     customer.Email,
		Metadata: map[string]string{
			"full_name": customer.FullName,
			"phone":     customer.Phone,
		},
	}
}
