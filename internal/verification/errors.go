package verification

import "errors"

var (
	ErrMissingReference = errors.New("missing payment reference")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrTotalsMismatch   = errors.New("declared totals do not match cart")
	ErrProviderRejected = errors.New("payment provider did not confirm the transaction")
	ErrAmountMismatch   = errors.New("paid amount does not match order total")
	ErrInternal         = errors.New("internal error")
)

// IsClientError reports whether err was caused by the request rather than by
// this service or its store. Provider rejections count as client errors.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingReference) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrTotalsMismatch) ||
		errors.Is(err, ErrProviderRejected) ||
		errors.Is(err, ErrAmountMismatch)
}
