package http

import (
	"context"
	"net/http"
	"time"

	"github.com/sherinaayu/prototype-ecommerce/internal/catalog"
)

type ProductsHandler struct {
	products catalog.ProductProvider
	timeout  time.Duration
}

func NewProductsHandler(products catalog.ProductProvider, timeout time.Duration) *ProductsHandler {
	return &ProductsHandler{
		products: products,
		timeout:  timeout,
	}
}

type ProductsResponse struct {
	Products []catalog.Product `json:"products"`
}

// List returns the catalog, optionally filtered by the category query
// parameter ("" and "all" match everything). Browsing needs no sign-in.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.products.ListProducts(ctx, r.URL.Query().Get("category"))
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "failed to load products")
		return
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}
