package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
)

func (s OrderStatus) String() string {
	return string(s)
}

const PaymentMethodPaystack = "paystack"

type Customer struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// CheckoutOrder is the persisted result of one verified payment.
// Reference is the idempotency key: at most one order exists per reference.
type CheckoutOrder struct {
	ID            string          `json:"id"`
	Reference     string          `json:"reference"`
	Cart          []LineItem      `json:"cart"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingFee   decimal.Decimal `json:"waybill"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	Customer      Customer        `json:"customer"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
}
