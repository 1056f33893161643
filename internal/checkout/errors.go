package checkout

import "errors"

var (
	ErrEmptyCart                 = errors.New("cart is empty, nothing to checkout")
	ErrPaymentInitiationFailed   = errors.New("payment initiation failed")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
)
