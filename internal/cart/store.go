package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sherinaayu/prototype-ecommerce/internal/domain"
	"golang.org/x/sync/singleflight"
)

var ErrItemNotFound = errors.New("item not found in cart")

// Observer is invoked synchronously after every successful cart mutation,
// once the durable write has completed (cart badge counts and the like).
type Observer func(userUID string, cart domain.Cart)

// Store owns the cart for the lifetime of a session. The durable copy in
// Storage is authoritative: every mutation persists before it is
// considered settled, so an immediate submit never sees a stale cart.
// Mutations are serialized per user, so concurrent requests from the same
// session cannot lose each other's writes.
type Store struct {
	storage Storage
	sfg     singleflight.Group // collapses concurrent loads per user

	mu        sync.RWMutex
	observers []Observer

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex // serializes mutations per user
}

func NewStore(storage Storage) *Store {
	return &Store{
		storage: storage,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *Store) userLock(userUID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[userUID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userUID] = l
	}
	return l
}

// Subscribe registers an observer for cart changes.
func (s *Store) Subscribe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Load reads the durable cart. A missing or malformed value degrades to an
// empty cart and never fails the caller.
func (s *Store) Load(ctx context.Context, userUID string) domain.Cart {
	v, _, _ := s.sfg.Do(userUID, func() (interface{}, error) {
		data, err := s.storage.Get(ctx, userUID)
		if errors.Is(err, ErrCartNotFound) {
			return domain.Cart{}, nil
		}
		if err != nil {
			log.Printf("cart load error for user %s: %v", userUID, err)
			return domain.Cart{}, nil
		}

		var cart domain.Cart
		if err := json.Unmarshal(data, &cart); err != nil {
			log.Printf("malformed stored cart for user %s, starting empty: %v", userUID, err)
			return domain.Cart{}, nil
		}
		return cart, nil
	})
	return v.(domain.Cart)
}

// Add puts the product in the user's cart with quantity 1, or increments
// the existing entry. The durable write completes before Add returns.
func (s *Store) Add(ctx context.Context, userUID string, item domain.CartItem) (domain.Cart, error) {
	lock := s.userLock(userUID)
	lock.Lock()
	defer lock.Unlock()

	cart := s.Load(ctx, userUID)
	cart.Add(item)

	if err := s.persist(ctx, userUID, cart); err != nil {
		return domain.Cart{}, err
	}
	s.notify(userUID, cart)
	return cart, nil
}

// UpdateQuantity sets the quantity of an existing entry.
func (s *Store) UpdateQuantity(ctx context.Context, userUID, productID string, quantity int) (domain.Cart, error) {
	lock := s.userLock(userUID)
	lock.Lock()
	defer lock.Unlock()

	cart := s.Load(ctx, userUID)
	if !cart.SetQuantity(productID, quantity) {
		return domain.Cart{}, ErrItemNotFound
	}

	if err := s.persist(ctx, userUID, cart); err != nil {
		return domain.Cart{}, err
	}
	s.notify(userUID, cart)
	return cart, nil
}

// RemoveItem deletes an entry from the cart.
func (s *Store) RemoveItem(ctx context.Context, userUID, productID string) (domain.Cart, error) {
	lock := s.userLock(userUID)
	lock.Lock()
	defer lock.Unlock()

	cart := s.Load(ctx, userUID)
	if !cart.Remove(productID) {
		return domain.Cart{}, ErrItemNotFound
	}

	if err := s.persist(ctx, userUID, cart); err != nil {
		return domain.Cart{}, err
	}
	s.notify(userUID, cart)
	return cart, nil
}

// Clear empties both the in-memory and the durable representation.
func (s *Store) Clear(ctx context.Context, userUID string) error {
	lock := s.userLock(userUID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.storage.Delete(ctx, userUID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.notify(userUID, domain.Cart{})
	return nil
}

// ComputeTotal loads the user's cart and returns Total over it.
func (s *Store) ComputeTotal(ctx context.Context, userUID string, deliveryCharge float64) float64 {
	return Total(s.Load(ctx, userUID).Items, deliveryCharge)
}

// Total sums line totals plus the delivery charge. Items whose price does
// not parse as a non-negative number, or whose quantity is not positive,
// are excluded and logged rather than aborting the checkout. An empty cart
// still yields exactly the delivery charge.
func Total(items []domain.CartItem, deliveryCharge float64) float64 {
	total := deliveryCharge
	for _, item := range items {
		price, err := item.Price.Float()
		if err != nil {
			log.Printf("excluding cart item %s from total: invalid price %q", item.ProductID, item.Price)
			continue
		}
		if item.Quantity <= 0 {
			log.Printf("excluding cart item %s from total: invalid quantity %d", item.ProductID, item.Quantity)
			continue
		}
		total += price * float64(item.Quantity)
	}
	return total
}

func (s *Store) persist(ctx context.Context, userUID string, cart domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.storage.Set(ctx, userUID, data); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

func (s *Store) notify(userUID string, cart domain.Cart) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.observers {
		fn(userUID, cart)
	}
}
