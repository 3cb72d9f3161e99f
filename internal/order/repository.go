package order

import (
	"context"
	"errors"

	"github.com/sherinaayu/prototype-ecommerce/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository is the persistence contract for orders. Create assigns
// the identifier and creation timestamp; SetOrderID performs the second
// write that stores the assigned id back into the record itself.
// Watch returns a channel that receives the user's full order list, most
// recent first, on every change in the backing store, until ctx is
// cancelled. The channel is closed when the watch ends.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) (string, error)
	SetOrderID(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userUID string) ([]domain.Order, error)
	Watch(ctx context.Context, userUID string) (<-chan []domain.Order, error)
}
