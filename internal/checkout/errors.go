package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrCheckoutBlocked     = errors.New("checkout blocked")
	ErrCheckoutInFlight    = errors.New("checkout already in progress")
	ErrCustomerIncomplete  = errors.New("customer details incomplete")
	ErrVerificationFailed  = errors.New("payment verification failed")
	ErrReferenceMismatched = errors.New("gateway returned a different reference")
)

// BlockedError carries the notification shown to the user when the guard refuses checkout.
type BlockedError struct {
	Message string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("checkout blocked: %s", e.Message)
}

func (e *BlockedError) Unwrap() error {
	return ErrCheckoutBlocked
}
