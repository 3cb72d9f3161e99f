package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/sherinaayu/prototype-ecommerce/internal/currency"
	"github.com/sherinaayu/prototype-ecommerce/internal/domain"
	"github.com/sherinaayu/prototype-ecommerce/internal/order"
)

type CheckoutHandler struct {
	submitter *order.Submitter
	timeout   time.Duration
}

func NewCheckoutHandler(submitter *order.Submitter, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		submitter: submitter,
		timeout:   timeout,
	}
}

type CheckoutResponseDTO struct {
	Order        *domain.Order `json:"order"`
	TotalDisplay string        `json:"total_display"`
}

// Checkout submits the current cart as an order. Backend failures surface
// as exactly one error response; the cart stays intact for retry.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity := identityFromContext(r.Context())
	if identity.IsAnonymous() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "please sign in to place an order")
		return
	}

	var buyer domain.BuyerInfo
	if err := json.NewDecoder(r.Body).Decode(&buyer); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if buyer.Name == "" || buyer.Email == "" || buyer.Address == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "name, email and address are required")
		return
	}

	placed, err := h.submitter.Submit(ctx, identity.UserUID, buyer)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
		case errors.Is(err, order.ErrSubmitInProgress):
			respondError(w, http.StatusConflict, "submit_in_progress", "an order submission is already in progress")
		default:
			log.Printf("checkout failed for request %s: %v", getRequestID(r.Context()), err)
			respondError(w, http.StatusBadGateway, "order_failed", "an error occurred while placing the order")
		}
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		Order:        placed,
		TotalDisplay: currency.Rupiah(placed.TotalAmount),
	})
}
