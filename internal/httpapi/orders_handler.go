package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/avolkov/go_retail/internal/checkout"
	"github.com/avolkov/go_retail/internal/domain"
	"github.com/avolkov/go_retail/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrdersHandler struct {
	checkout *checkout.Service
	orders   repository.OrderRepository
	timeout  time.Duration
}

func NewOrdersHandler(service *checkout.Service, orders repository.OrderRepository, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		checkout: service,
		orders:   orders,
		timeout:  timeout,
	}
}

type OrderItemDTO struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int32   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

type OrderResponseDTO struct {
	ID              string         `json:"id"`
	CustomerID      string         `json:"customer_id"`
	Items           []OrderItemDTO `json:"items"`
	Subtotal        float64        `json:"subtotal"`
	TaxAmount       float64        `json:"tax_amount"`
	FinalAmount     float64        `json:"final_amount"`
	Currency        string         `json:"currency"`
	ShippingAddress string         `json:"shipping_address"`
	Status          string         `json:"status"`
	CreatedAt       string         `json:"created_at"`
	LastUpdated     string         `json:"last_updated"`
}

func convertOrder(o *domain.Order) OrderResponseDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}

	return OrderResponseDTO{
		ID:              o.ID.String(),
		CustomerID:      o.CustomerID,
		Items:           items,
		Subtotal:        o.Subtotal,
		TaxAmount:       o.TaxAmount,
		FinalAmount:     o.FinalAmount,
		Currency:        o.Currency,
		ShippingAddress: o.ShippingAddress,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
		LastUpdated:     o.LastUpdated.Format(time.RFC3339),
	}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.checkout.ListOrders(ctx, userID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	dtos := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, convertOrder(o))
	}

	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	if order.CustomerID != userID {
		// do not reveal other customers' orders
		respondError(w, http.StatusNotFound, "order_not_found", "order not found")
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(order))
}

// POST /api/v1/orders/{order_id}/advance
func (h *OrdersHandler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	order, advanced, err := h.checkout.AdvanceOrder(ctx, orderID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	if !advanced {
		respondError(w, http.StatusConflict, "order_final", "order is already in a final state")
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(order))
}

// POST /api/v1/orders/{order_id}/cancel
func (h *OrdersHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	order, cancelled, err := h.checkout.CancelOrder(ctx, orderID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	if !cancelled {
		respondError(w, http.StatusConflict, "order_not_cancellable",
			"only pending or processing orders can be cancelled")
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(order))
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a valid UUID")
		return uuid.Nil, false
	}
	return orderID, true
}
