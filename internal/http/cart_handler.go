package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sherinaayu/prototype-ecommerce/internal/cart"
	"github.com/sherinaayu/prototype-ecommerce/internal/catalog"
	"github.com/sherinaayu/prototype-ecommerce/internal/domain"
)

type CartHandler struct {
	store    *cart.Store
	products catalog.ProductProvider
	timeout  time.Duration
}

func NewCartHandler(store *cart.Store, products catalog.ProductProvider, timeout time.Duration) *CartHandler {
	return &CartHandler{
		store:    store,
		products: products,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity := identityFromContext(r.Context())
	if identity.IsAnonymous() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "please sign in first")
		return
	}

	respondJSON(w, http.StatusOK, h.store.Load(ctx, identity.UserUID))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity := identityFromContext(r.Context())
	if identity.IsAnonymous() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "please sign in to add to cart")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	product, err := h.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "failed to look up product")
		return
	}

	item := domain.CartItem{
		ProductID: product.ID,
		Title:     product.Title,
		Price:     domain.Amount(strconv.FormatFloat(product.Price, 'f', -1, 64)),
		Image:     product.Image,
	}

	updated, err := h.store.Add(ctx, identity.UserUID, item)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "cart_unavailable", "failed to update cart")
		return
	}

	respondJSON(w, http.StatusCreated, updated)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity := identityFromContext(r.Context())
	if identity.IsAnonymous() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "please sign in first")
		return
	}

	productID := chi.URLParam(r, "product_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	updated, err := h.store.UpdateQuantity(ctx, identity.UserUID, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "item not in cart")
			return
		}
		respondError(w, http.StatusServiceUnavailable, "cart_unavailable", "failed to update cart")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity := identityFromContext(r.Context())
	if identity.IsAnonymous() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "please sign in first")
		return
	}

	productID := chi.URLParam(r, "product_id")

	updated, err := h.store.RemoveItem(ctx, identity.UserUID, productID)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "item not in cart")
			return
		}
		respondError(w, http.StatusServiceUnavailable, "cart_unavailable", "failed to update cart")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity := identityFromContext(r.Context())
	if identity.IsAnonymous() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "please sign in first")
		return
	}

	if err := h.store.Clear(ctx, identity.UserUID); err != nil {
		respondError(w, http.StatusServiceUnavailable, "cart_unavailable", "failed to clear cart")
		return
	}

	respondJSON(w, http.StatusOK, domain.Cart{})
}
