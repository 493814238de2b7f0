package pricing

import (
	"github.com/Joebakid/Gudrix/internal/domain"
	"github.com/shopspring/decimal"
)

// Quote is the priced view of a cart at one instant.
type Quote struct {
	TotalItems  int             `json:"totalItems"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"waybill"`
	Total       decimal.Decimal `json:"total"`
}

// Engine prices carts. It holds no cart state, so every Quote reflects
// exactly the rows it is given.
type Engine struct {
	schedule ShippingSchedule
}

func NewEngine(schedule ShippingSchedule) *Engine {
	return &Engine{schedule: schedule}
}

func (e *Engine) Schedule() ShippingSchedule {
	return e.schedule
}

func (e *Engine) Quote(items []domain.LineItem) Quote {
	totalItems := TotalItems(items)
	subtotal := Subtotal(items)
	fee := e.schedule.Fee(totalItems)
	return Quote{
		TotalItems:  totalItems,
		Subtotal:    subtotal,
		ShippingFee: fee,
		Total:       subtotal.Add(fee),
	}
}

func TotalItems(items []domain.LineItem) int {
	total := 0
	for _, it := range items {
		if it.Quantity > 0 {
			total += it.Quantity
		}
	}
	return total
}

// Subtotal sums quantity × unit price. Negative prices count as zero.
func Subtotal(items []domain.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 || it.UnitPrice.IsNegative() {
			continue
		}
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}
