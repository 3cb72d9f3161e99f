package order

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/sherinaayu/prototype-ecommerce/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository implements OrderRepository with in-memory storage. It
// backs local development and tests; semantics match the Mongo
// implementation, including the push on every change.
type MemoryRepository struct {
	mu       sync.RWMutex
	orders   map[string]*domain.Order // id hex -> order
	lastTS   time.Time
	nextSub  int
	watchers map[int]*memoryWatcher
}

type memoryWatcher struct {
	userUID string
	ch      chan []domain.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orders:   make(map[string]*domain.Order),
		watchers: make(map[int]*memoryWatcher),
	}
}

func (r *MemoryRepository) Create(_ context.Context, o *domain.Order) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o.ID = primitive.NewObjectID()

	// Creation timestamps must strictly increase so the feed ordering is
	// stable even when two orders land within the clock's resolution.
	now := time.Now()
	if !now.After(r.lastTS) {
		now = r.lastTS.Add(time.Nanosecond)
	}
	r.lastTS = now
	o.CreatedAt = now

	stored := *o
	stored.Items = append([]domain.CartItem(nil), o.Items...)
	r.orders[o.ID.Hex()] = &stored

	r.notifyLocked(o.UserUID)
	return o.ID.Hex(), nil
}

func (r *MemoryRepository) SetOrderID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.OrderID = id
	r.notifyLocked(o.UserUID)
	return nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	r.notifyLocked(o.UserUID)
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userUID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked(userUID), nil
}

func (r *MemoryRepository) Watch(ctx context.Context, userUID string) (<-chan []domain.Order, error) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	w := &memoryWatcher{userUID: userUID, ch: make(chan []domain.Order, 16)}
	r.watchers[id] = w
	w.ch <- r.listLocked(userUID)
	r.mu.Unlock()

	updates := make(chan []domain.Order)
	go func() {
		defer close(updates)
		defer func() {
			r.mu.Lock()
			delete(r.watchers, id)
			r.mu.Unlock()
		}()
		for {
			select {
			case orders := <-w.ch:
				select {
				case updates <- orders:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates, nil
}

func (r *MemoryRepository) listLocked(userUID string) []domain.Order {
	var orders []domain.Order
	for _, o := range r.orders {
		if o.UserUID == userUID {
			orders = append(orders, *o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}

func (r *MemoryRepository) notifyLocked(userUID string) {
	for _, w := range r.watchers {
		if w.userUID != userUID {
			continue
		}
		select {
		case w.ch <- r.listLocked(userUID):
		default:
			log.Printf("dropping order update for slow watcher, user %s", userUID)
		}
	}
}
