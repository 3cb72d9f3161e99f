package cart

import (
	"context"
	"errors"
)

var ErrCartNotFound = errors.New("cart not found")

// Storage is the durable key-value home of the cart: one serialized value
// per user under a fixed key, surviving restarts.
type Storage interface {
	Get(ctx context.Context, userUID string) ([]byte, error)
	Set(ctx context.Context, userUID string, data []byte) error
	Delete(ctx context.Context, userUID string) error
}
