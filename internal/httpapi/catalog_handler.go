package httpapi

import (
	"net/http"
	"strconv"

	"github.com/avolkov/go_retail/internal/catalog"
	"github.com/avolkov/go_retail/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalog catalog.Store
}

func NewCatalogHandler(store catalog.Store) *CatalogHandler {
	return &CatalogHandler{catalog: store}
}

type ProductDTO struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Kind  string  `json:"kind"`
	Price float64 `json:"price"`
	Stock int32   `json:"stock"`
}

// unit cost is internal pricing data and stays out of the API
func convertProduct(p domain.Product) ProductDTO {
	return ProductDTO{
		ID:    p.ID,
		Name:  p.Name,
		Kind:  string(p.Kind),
		Price: p.Price,
		Stock: p.Stock,
	}
}

// GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.Snapshot()

	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, convertProduct(p))
	}

	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/products/{product_id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	product, err := h.catalog.Get(productID)
	if err != nil {
		handleServiceError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertProduct(product))
}
