package domain

import "github.com/shopspring/decimal"

// VerificationRequest is what the client submits once the payment widget
// hands back a reference. Totals are client-declared and re-checked server side.
type VerificationRequest struct {
	Reference string          `json:"reference"`
	Cart      []LineItem      `json:"cart"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Waybill   decimal.Decimal `json:"waybill"`
	Total     decimal.Decimal `json:"total"`
	Customer  Customer        `json:"customer"`
}

type VerificationResponse struct {
	Success bool `json:"success"`
}
