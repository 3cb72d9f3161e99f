package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sherinaayu/prototype-ecommerce/internal/order"
)

type OrdersHandler struct {
	repo    order.OrderRepository
	feed    *order.Feed
	timeout time.Duration
}

func NewOrdersHandler(repo order.OrderRepository, feed *order.Feed, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		repo:    repo,
		feed:    feed,
		timeout: timeout,
	}
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity := identityFromContext(r.Context())
	if identity.IsAnonymous() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "please sign in first")
		return
	}

	orders, err := h.repo.ListByUser(ctx, identity.UserUID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "orders_unavailable", "failed to load orders")
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

// StreamOrders serves the live order status feed over server-sent events.
// Each event carries the user's full current order list, most recent
// first. The subscription is cancelled when the client disconnects.
func (h *OrdersHandler) StreamOrders(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity.IsAnonymous() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "please sign in first")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := make(chan []byte, 16)
	sub, err := h.feed.Subscribe(r.Context(), identity.UserUID, func(views []order.OrderView) {
		data, err := json.Marshal(views)
		if err != nil {
			log.Printf("failed to marshal order feed update: %v", err)
			return
		}
		select {
		case events <- data:
		default:
			log.Printf("dropping feed update for slow client, user %s", identity.UserUID)
		}
	})
	if err != nil {
		respondError(w, http.StatusBadGateway, "orders_unavailable", "failed to subscribe to orders")
		return
	}
	defer sub.Cancel()

	for {
		select {
		case data := <-events:
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		case <-r.Context().Done():
			return
		case <-sub.Done():
			return
		}
	}
}
