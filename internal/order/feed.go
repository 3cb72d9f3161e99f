package order

import (
	"context"
	"fmt"

	"github.com/sherinaayu/prototype-ecommerce/internal/domain"
)

// OrderView is the display projection of one order in the status feed.
type OrderView struct {
	OrderID     string             `json:"order_id,omitempty"`
	Name        string             `json:"name"`
	Status      domain.OrderStatus `json:"status"`
	TotalItems  int                `json:"total_items"`
	TotalAmount float64            `json:"total_amount"`
	Address     string             `json:"address"`
	Items       []domain.ItemRow   `json:"items"`
}

// Feed republishes a user's orders as an ordered list whenever the backing
// store changes: a push subscription, not a polling loop.
type Feed struct {
	repo OrderRepository
}

func NewFeed(repo OrderRepository) *Feed {
	return &Feed{repo: repo}
}

// Subscription is the cancel handle for one live feed. Cancel stops
// further deliveries and releases the backend watch.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *Subscription) Cancel() {
	s.cancel()
	<-s.done
}

// Done is closed once the subscription has fully stopped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Subscribe delivers the full current list of the user's orders, most
// recent first, to onUpdate on every change in the order store, until the
// subscription is cancelled or ctx ends. onUpdate is called from a single
// goroutine, so deliveries arrive in the order the backend emits them.
func (f *Feed) Subscribe(ctx context.Context, userUID string, onUpdate func([]OrderView)) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	updates, err := f.repo.Watch(ctx, userUID)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe to orders: %w", err)
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		for orders := range updates {
			onUpdate(project(orders))
		}
	}()

	return sub, nil
}

func project(orders []domain.Order) []OrderView {
	views := make([]OrderView, len(orders))
	for i, o := range orders {
		views[i] = OrderView{
			OrderID:     o.OrderID,
			Name:        o.Name,
			Status:      o.Status,
			TotalItems:  o.TotalItems,
			TotalAmount: o.TotalAmount,
			Address:     o.Address,
			Items:       domain.ItemRows(o),
		}
	}
	return views
}
