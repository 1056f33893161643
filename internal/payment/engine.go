package payment

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/avolkov/go_retail/internal/domain"
	"github.com/google/uuid"
)

// Engine issues and verifies payment one-time codes and drives the payment
// state machine. It holds no retry state: the caller owns the attempt
// budget, and every initiation yields a fresh Payment with a fresh code.
type Engine struct {
	dispatcher Dispatcher
	intn       func(n int) int
}

func NewEngine(dispatcher Dispatcher) *Engine {
	return &Engine{
		dispatcher: dispatcher,
		intn:       rand.Intn,
	}
}

// NewEngineWithSource uses the supplied source for code generation, so
// codes are a pure function of the source rather than hidden global state.
func NewEngineWithSource(dispatcher Dispatcher, r *rand.Rand) *Engine {
	return &Engine{
		dispatcher: dispatcher,
		intn:       r.Intn,
	}
}

// Initiate constructs a Payment in PENDING, generates a 6-digit code and
// dispatches it to the payer's contact. On dispatch failure the payment
// transitions to FAILED and ErrDispatchFailed is returned alongside it; on
// success it transitions to OTP_SENT.
func (e *Engine) Initiate(ctx context.Context, orderRef, payerID, destination string, amount float64, method domain.PaymentMethod) (*domain.Payment, error) {
	p := &domain.Payment{
		ID:        uuid.New(),
		OrderRef:  orderRef,
		PayerID:   payerID,
		Amount:    amount,
		Method:    method,
		Status:    domain.PaymentStatusPending,
		Code:      e.generateCode(),
		CreatedAt: time.Now(),
	}

	if err := e.dispatcher.Send(ctx, destination, p.Code); err != nil {
		p.Status = domain.PaymentStatusFailed
		return p, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	p.Status = domain.PaymentStatusOTPSent
	return p, nil
}

// Verify compares candidate against the issued code. A match completes the
// payment and assigns its transaction id; a mismatch moves it to
// FAILED_INVALID_OTP. The retry budget belongs to the caller, not here:
// while the caller still has budget, a later attempt may compare again and
// complete the payment; once the budget is exhausted the payment stays
// FAILED_INVALID_OTP for good.
func (e *Engine) Verify(p *domain.Payment, candidate string) bool {
	if p.Status != domain.PaymentStatusOTPSent && p.Status != domain.PaymentStatusFailedOTP {
		return false
	}

	if candidate != p.Code {
		p.Status = domain.PaymentStatusFailedOTP
		return false
	}

	p.Status = domain.PaymentStatusCompleted
	p.TransactionID = fmt.Sprintf("TXN-%d", time.Now().UnixNano())
	return true
}

// RequestCancel marks the payment for cancellation. Reserved for flows
// outside checkout; returns false once the payment is terminal.
func (e *Engine) RequestCancel(p *domain.Payment) bool {
	if !p.Status.CanTransitionTo(domain.PaymentStatusCancelRequested) {
		return false
	}
	p.Status = domain.PaymentStatusCancelRequested
	return true
}

// ConfirmCancel finishes a requested cancellation.
func (e *Engine) ConfirmCancel(p *domain.Payment) bool {
	if !p.Status.CanTransitionTo(domain.PaymentStatusCancelled) {
		return false
	}
	p.Status = domain.PaymentStatusCancelled
	return true
}

// generateCode draws a 6-digit numeric code uniformly from [100000, 999999].
func (e *Engine) generateCode() string {
	return fmt.Sprintf("%06d", 100000+e.intn(900000))
}
