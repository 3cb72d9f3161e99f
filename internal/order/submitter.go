package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sherinaayu/prototype-ecommerce/internal/cart"
	"github.com/sherinaayu/prototype-ecommerce/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// DeliveryCharge is the fixed surcharge added to every order total.
const DeliveryCharge = 100

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrSubmitInProgress = errors.New("order submission already in progress")
)

// EventPublisher announces placed orders to downstream consumers. Delivery
// is best effort; a publish failure never fails the submission.
type EventPublisher interface {
	OrderPlaced(ctx context.Context, o domain.Order) error
}

// Submitter turns the current cart into exactly one pending order per
// checkout. The per-user in-flight flag is a session-scoped guard, not a
// distributed lock: a second Submit while one is outstanding is rejected,
// not queued.
type Submitter struct {
	cart     *cart.Store
	repo     OrderRepository
	events   EventPublisher
	breaker  *gobreaker.CircuitBreaker[string]
	inFlight sync.Map // userUID -> struct{}
}

func NewSubmitter(cartStore *cart.Store, repo OrderRepository, events EventPublisher) *Submitter {
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "order-store",
		Timeout: 30 * time.Second,
	})
	return &Submitter{
		cart:    cartStore,
		repo:    repo,
		events:  events,
		breaker: breaker,
	}
}

// Submit builds a pending order from the user's cart snapshot, persists it
// and backfills the assigned id into the record. On success the cart is
// cleared; on a create failure the cart is left untouched so the user can
// retry without re-entering items. The total is always recomputed
// server-side, never trusted from the client.
func (s *Submitter) Submit(ctx context.Context, userUID string, buyer domain.BuyerInfo) (*domain.Order, error) {
	if _, busy := s.inFlight.LoadOrStore(userUID, struct{}{}); busy {
		return nil, ErrSubmitInProgress
	}
	defer s.inFlight.Delete(userUID)

	items := s.cart.Load(ctx, userUID).Items
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	attempt := uuid.New().String()
	o := &domain.Order{
		Name:        buyer.Name,
		Email:       buyer.Email,
		Address:     buyer.Address,
		UserUID:     userUID,
		TotalItems:  len(items),
		TotalAmount: cart.Total(items, DeliveryCharge),
		Items:       items,
		Status:      domain.OrderStatusPending,
	}

	id, err := s.breaker.Execute(func() (string, error) {
		return s.repo.Create(ctx, o)
	})
	if err != nil {
		log.Printf("submit attempt %s for user %s failed: %v", attempt, userUID, err)
		return nil, fmt.Errorf("place order: %w", err)
	}

	// Second write: store the assigned id back into the record. An order
	// without its self-referenced id is an accepted degraded state, not a
	// failed submission.
	if err := s.repo.SetOrderID(ctx, id); err != nil {
		log.Printf("order %s created but id backfill failed (attempt %s): %v", id, attempt, err)
	} else {
		o.OrderID = id
	}

	if err := s.cart.Clear(ctx, userUID); err != nil {
		log.Printf("order %s placed but cart clear failed for user %s: %v", id, userUID, err)
	}

	if s.events != nil {
		if err := s.events.OrderPlaced(ctx, *o); err != nil {
			log.Printf("failed to publish order-placed for %s: %v", id, err)
		}
	}

	return o, nil
}
