package checkout

import (
	"context"
	"fmt"

	"github.com/avolkov/go_retail/internal/domain"
)

// maxOTPAttempts is the verification budget per initiation. The budget is
// enforced here, not inside the Payment Engine.
const maxOTPAttempts = 3

func (s *Service) initiatePayment(ctx context.Context, customer *domain.Customer, amount float64, method domain.PaymentMethod) (*domain.Payment, error) {
	pay, err := s.payments.Initiate(ctx, "", customer.ID, customer.Contact, amount, method)
	if err != nil {
		// Dispatch failure is terminal for this checkout attempt; the
		// customer must restart checkout
		return nil, fmt.Errorf("%w: %v", ErrPaymentInitiationFailed, err)
	}
	return pay, nil
}

// verifyPayment collects up to maxOTPAttempts candidate codes and stops at
// the first match. When no attempt succeeds the payment is left
// FAILED_INVALID_OTP and the whole checkout is reported failed with no
// state touched.
func (s *Service) verifyPayment(ctx context.Context, pay *domain.Payment, codes OTPReader) error {
	for attempt := 1; attempt <= maxOTPAttempts; attempt++ {
		code, err := codes.ReadCode(ctx, attempt)
		if err != nil {
			// The customer abandoned the prompt; remaining budget is
			// forfeited
			s.logStep("verify", fmt.Sprintf("no code for attempt %d: %v", attempt, err))
			break
		}

		if s.metrics != nil {
			s.metrics.OTPAttempts.Inc()
		}
		if s.payments.Verify(pay, code) {
			return nil
		}
		s.logStep("verify", fmt.Sprintf("attempt %d/%d did not match", attempt, maxOTPAttempts))
	}

	return ErrPaymentVerificationFailed
}
