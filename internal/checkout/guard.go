package checkout

import (
	"fmt"
	"strings"

	"github.com/Joebakid/Gudrix/internal/domain"
	"github.com/Joebakid/Gudrix/internal/pricing"
	"github.com/shopspring/decimal"
)

type State int

const (
	StateBlocked State = iota
	StateAllowed
)

func (s State) String() string {
	switch s {
	case StateAllowed:
		return "allowed"
	default:
		return "blocked"
	}
}

// Decision is the outcome of one checkout attempt.
type Decision struct {
	State   State
	Quote   pricing.Quote
	Message string
}

func (d Decision) Allowed() bool {
	return d.State == StateAllowed
}

// Guard blocks checkout while the cart subtotal is below the minimum order amount.
type Guard struct {
	engine   *pricing.Engine
	minOrder decimal.Decimal
	symbol   string
}

func NewGuard(engine *pricing.Engine, minOrder decimal.Decimal, currencySymbol string) *Guard {
	return &Guard{engine: engine, minOrder: minOrder, symbol: currencySymbol}
}

func (g *Guard) MinOrder() decimal.Decimal {
	return g.minOrder
}

// StateFor reports the guard state for a subtotal.
func (g *Guard) StateFor(subtotal decimal.Decimal) State {
	if subtotal.GreaterThanOrEqual(g.minOrder) {
		return StateAllowed
	}
	return StateBlocked
}

// Attempt prices items as they are right now and decides. It must be called
// at the moment of checkout, never with a quote kept from an earlier render.
func (g *Guard) Attempt(items []domain.LineItem) Decision {
	q := g.engine.Quote(items)
	d := Decision{State: g.StateFor(q.Subtotal), Quote: q}
	if !d.Allowed() {
		d.Message = fmt.Sprintf("Minimum order is %s", FormatAmount(g.symbol, g.minOrder))
	}
	return d
}

// FormatAmount renders an amount with thousands separators, e.g. "₦10,000" or "₦1,250.50".
func FormatAmount(symbol string, amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	whole := amount.Truncate(0)
	frac := amount.Sub(whole)

	digits := whole.String()
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := sign + symbol + b.String()
	if !frac.IsZero() {
		out += strings.TrimPrefix(frac.StringFixed(2), "0")
	}
	return out
}
