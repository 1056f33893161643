package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/avolkov/go_retail/internal/checkout"
	"github.com/avolkov/go_retail/internal/domain"
)

type CheckoutHandler struct {
	checkout *checkout.Service
	timeout  time.Duration
}

func NewCheckoutHandler(service *checkout.Service, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: service,
		timeout:  timeout,
	}
}

type CheckoutRequestDTO struct {
	ShippingAddress string   `json:"shipping_address"`
	PaymentMethod   string   `json:"payment_method"`
	OTPCodes        []string `json:"otp_codes"`
}

var validMethods = map[domain.PaymentMethod]bool{
	domain.MethodCreditCard:   true,
	domain.MethodDebitCard:    true,
	domain.MethodPayPal:       true,
	domain.MethodBankTransfer: true,
}

// POST /api/v1/checkout
//
// Runs the whole flow synchronously: snapshot, payment with one-time code
// verification, order creation and completion. The submitted otp_codes are
// consumed one per verification attempt, three attempts at most.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ShippingAddress == "" {
		respondError(w, http.StatusBadRequest, "missing_shipping_address", "shipping_address is required")
		return
	}
	method := domain.PaymentMethod(req.PaymentMethod)
	if !validMethods[method] {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "unknown payment_method")
		return
	}
	if len(req.OTPCodes) == 0 {
		respondError(w, http.StatusBadRequest, "missing_otp_codes", "at least one otp code is required")
		return
	}

	order, err := h.checkout.Checkout(ctx, userID, req.ShippingAddress, method, checkout.StaticCodes(req.OTPCodes))
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusCreated, convertOrder(order))
}
