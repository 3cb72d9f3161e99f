package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sherinaayu/prototype-ecommerce/internal/cart"
	"github.com/sherinaayu/prototype-ecommerce/internal/domain"
	"github.com/sherinaayu/prototype-ecommerce/internal/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingRepo rejects every create, simulating a backend outage.
type failingRepo struct {
	order.OrderRepository
}

func (failingRepo) Create(context.Context, *domain.Order) (string, error) {
	return "", errors.New("backend unavailable")
}

// gatedRepo stalls every create until the gate closes, keeping a
// submission in flight for as long as the test needs.
type gatedRepo struct {
	*order.MemoryRepository
	gate chan struct{}
}

func (r *gatedRepo) Create(ctx context.Context, o *domain.Order) (string, error) {
	<-r.gate
	return r.MemoryRepository.Create(ctx, o)
}

func seedCart(t *testing.T, store *cart.Store) {
	t.Helper()
	_, err := store.Add(context.Background(), "user1", domain.CartItem{ProductID: "p-1", Title: "Kaos", Price: "55000"})
	require.NoError(t, err)
}

func TestCheckout_Success(t *testing.T) {
	store := cart.NewStore(newFakeStorage())
	seedCart(t, store)
	repo := order.NewMemoryRepository()
	handler := NewCheckoutHandler(order.NewSubmitter(store, repo, nil), 5*time.Second)

	body := []byte(`{"name":"Ayu","email":"ayu@example.com","address":"Jl. Melati 5"}`)
	recorder := httptest.NewRecorder()
	handler.Checkout(recorder, signedInRequest("POST", "/api/v1/checkout", body))

	require.Equal(t, http.StatusCreated, recorder.Code)

	var response CheckoutResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	require.NotNil(t, response.Order)
	assert.Equal(t, domain.OrderStatusPending, response.Order.Status)
	assert.Equal(t, 1, response.Order.TotalItems)
	assert.Equal(t, 55100.0, response.Order.TotalAmount)
	assert.Equal(t, "Rp55.100", response.TotalDisplay)
	assert.NotEmpty(t, response.Order.OrderID)

	// Cart was cleared by the successful submission.
	assert.Empty(t, store.Load(context.Background(), "user1").Items)

	orders, err := repo.ListByUser(context.Background(), "user1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCheckout_Anonymous(t *testing.T) {
	store := cart.NewStore(newFakeStorage())
	handler := NewCheckoutHandler(order.NewSubmitter(store, order.NewMemoryRepository(), nil), 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/checkout", nil)
	handler.Checkout(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCheckout_EmptyCart(t *testing.T) {
	store := cart.NewStore(newFakeStorage())
	handler := NewCheckoutHandler(order.NewSubmitter(store, order.NewMemoryRepository(), nil), 5*time.Second)

	body := []byte(`{"name":"Ayu","email":"ayu@example.com","address":"Jl. Melati 5"}`)
	recorder := httptest.NewRecorder()
	handler.Checkout(recorder, signedInRequest("POST", "/api/v1/checkout", body))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCheckout_MissingFields(t *testing.T) {
	store := cart.NewStore(newFakeStorage())
	seedCart(t, store)
	handler := NewCheckoutHandler(order.NewSubmitter(store, order.NewMemoryRepository(), nil), 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Checkout(recorder, signedInRequest("POST", "/api/v1/checkout", []byte(`{"name":"Ayu"}`)))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCheckout_ConcurrentSubmitConflicts(t *testing.T) {
	store := cart.NewStore(newFakeStorage())
	seedCart(t, store)
	repo := &gatedRepo{MemoryRepository: order.NewMemoryRepository(), gate: make(chan struct{})}
	handler := NewCheckoutHandler(order.NewSubmitter(store, repo, nil), 5*time.Second)

	body := []byte(`{"name":"Ayu","email":"ayu@example.com","address":"Jl. Melati 5"}`)

	firstCode := make(chan int, 1)
	go func() {
		recorder := httptest.NewRecorder()
		handler.Checkout(recorder, signedInRequest("POST", "/api/v1/checkout", body))
		firstCode <- recorder.Code
	}()

	// Once the first submission is stuck in the repository, a second one
	// for the same user must be turned away, not queued.
	var conflict ErrorResponse
	require.Eventually(t, func() bool {
		recorder := httptest.NewRecorder()
		handler.Checkout(recorder, signedInRequest("POST", "/api/v1/checkout", body))
		if recorder.Code != http.StatusConflict {
			return false
		}
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&conflict))
		return true
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "submit_in_progress", conflict.Code)

	close(repo.gate)
	assert.Equal(t, http.StatusCreated, <-firstCode)

	orders, err := repo.ListByUser(context.Background(), "user1")
	require.NoError(t, err)
	assert.Len(t, orders, 1, "only the first submission may create an order")
}

func TestCheckout_BackendFailureKeepsCart(t *testing.T) {
	store := cart.NewStore(newFakeStorage())
	seedCart(t, store)
	handler := NewCheckoutHandler(order.NewSubmitter(store, failingRepo{}, nil), 5*time.Second)

	body := []byte(`{"name":"Ayu","email":"ayu@example.com","address":"Jl. Melati 5"}`)
	recorder := httptest.NewRecorder()
	handler.Checkout(recorder, signedInRequest("POST", "/api/v1/checkout", body))

	require.Equal(t, http.StatusBadGateway, recorder.Code)

	var response ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, "order_failed", response.Code)

	// The cart survives the failed submission.
	assert.Len(t, store.Load(context.Background(), "user1").Items, 1)
}
