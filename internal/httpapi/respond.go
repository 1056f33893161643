package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/avolkov/go_retail/internal/cart"
	"github.com/avolkov/go_retail/internal/catalog"
	"github.com/avolkov/go_retail/internal/checkout"
	"github.com/avolkov/go_retail/internal/repository"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func getUserIDFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value("user_id").(string); ok {
		return userID
	}
	return ""
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value("request_id").(string); ok {
		return requestID
	}
	return ""
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

// handleServiceError maps known service errors to HTTP status codes. The
// request id travels back in Details so a failed call can be correlated
// with the server log.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var status int
	var code string
	message := err.Error()

	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		status, code = http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, cart.ErrOutOfStock):
		status, code = http.StatusConflict, "out_of_stock"
	case errors.Is(err, cart.ErrLineNotFound):
		status, code = http.StatusNotFound, "line_not_found"
	case errors.Is(err, catalog.ErrProductNotFound):
		status, code = http.StatusNotFound, "product_not_found"
	case errors.Is(err, catalog.ErrInsufficientStock):
		status, code = http.StatusConflict, "insufficient_stock"
	case errors.Is(err, checkout.ErrEmptyCart):
		status, code = http.StatusBadRequest, "empty_cart"
	case errors.Is(err, checkout.ErrPaymentInitiationFailed):
		status, code = http.StatusBadGateway, "payment_initiation_failed"
	case errors.Is(err, checkout.ErrPaymentVerificationFailed):
		status, code = http.StatusPaymentRequired, "payment_verification_failed"
	case errors.Is(err, repository.ErrOrderNotFound):
		status, code = http.StatusNotFound, "order_not_found"
	case errors.Is(err, repository.ErrCustomerNotFound):
		status, code = http.StatusNotFound, "customer_not_found"
	default:
		log.Printf("unhandled service error (request %s): %v", getRequestID(ctx), err)
		status, code = http.StatusInternalServerError, "internal_error"
		message = "internal server error"
	}

	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: getRequestID(ctx),
	})
}
