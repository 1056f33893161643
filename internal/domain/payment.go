package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	MethodCreditCard   PaymentMethod = "CREDIT_CARD"
	MethodDebitCard    PaymentMethod = "DEBIT_CARD"
	MethodPayPal       PaymentMethod = "PAYPAL"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

type PaymentStatus string

const (
	PaymentStatusPending         PaymentStatus = "PENDING"
	PaymentStatusOTPSent         PaymentStatus = "OTP_SENT"
	PaymentStatusCompleted       PaymentStatus = "COMPLETED"
	PaymentStatusFailedOTP       PaymentStatus = "FAILED_INVALID_OTP"
	PaymentStatusFailed          PaymentStatus = "FAILED"
	PaymentStatusCancelRequested PaymentStatus = "CANCEL_REQUESTED"
	PaymentStatusCancelled       PaymentStatus = "CANCELLED"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusOTPSent, PaymentStatusFailed, PaymentStatusCancelRequested},
	PaymentStatusOTPSent: {PaymentStatusCompleted, PaymentStatusFailedOTP, PaymentStatusCancelRequested},
	// A mismatch is terminal only once the caller's retry budget is spent;
	// within the budget another comparison may still complete the payment.
	PaymentStatusFailedOTP:       {PaymentStatusCompleted},
	PaymentStatusCancelRequested: {PaymentStatusCancelled},
}

// CanTransitionTo reports whether from -> to is a legal payment transition.
func (from PaymentStatus) CanTransitionTo(to PaymentStatus) bool {
	for _, s := range paymentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s PaymentStatus) IsTerminal() bool {
	return len(paymentTransitions[s]) == 0
}

func (s PaymentStatus) String() string {
	return string(s)
}

// Payment records one payment attempt for an order reference. Code is the
// one-time code issued at initiation; it is deliberately excluded from
// serialization and never persisted, so it cannot survive a restart.
type Payment struct {
	ID            uuid.UUID     `json:"id"`
	OrderRef      string        `json:"order_ref"`
	PayerID       string        `json:"payer_id"`
	Amount        float64       `json:"amount"`
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id"`
	Code          string        `json:"-"`
	CreatedAt     time.Time     `json:"created_at"`
}
