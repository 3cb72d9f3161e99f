package order

import (
	"context"
	"testing"

	"github.com/sherinaayu/prototype-ecommerce/internal/domain"
	"gotest.tools/v3/assert"
)

func TestMemoryRepository_CreateAssignsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	o := &domain.Order{UserUID: "user1", Status: domain.OrderStatusPending}
	id, err := repo.Create(ctx, o)
	assert.NilError(t, err)
	assert.Assert(t, id != "")
	assert.Assert(t, !o.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, id)
	assert.NilError(t, err)
	assert.Equal(t, got.UserUID, "user1")
	assert.Equal(t, got.OrderID, "", "order_id is empty until backfilled")
}

func TestMemoryRepository_TimestampsStrictlyIncrease(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	var prev *domain.Order
	for i := 0; i < 50; i++ {
		o := &domain.Order{UserUID: "user1", Status: domain.OrderStatusPending}
		_, err := repo.Create(ctx, o)
		assert.NilError(t, err)
		if prev != nil {
			assert.Assert(t, o.CreatedAt.After(prev.CreatedAt))
		}
		prev = o
	}
}

func TestMemoryRepository_SetOrderID(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	o := &domain.Order{UserUID: "user1", Status: domain.OrderStatusPending}
	id, err := repo.Create(ctx, o)
	assert.NilError(t, err)

	assert.NilError(t, repo.SetOrderID(ctx, id))
	got, err := repo.GetByID(ctx, id)
	assert.NilError(t, err)
	assert.Equal(t, got.OrderID, id)

	assert.ErrorIs(t, repo.SetOrderID(ctx, "missing"), ErrOrderNotFound)
}

func TestMemoryRepository_UpdateStatus(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	o := &domain.Order{UserUID: "user1", Status: domain.OrderStatusPending}
	id, err := repo.Create(ctx, o)
	assert.NilError(t, err)

	assert.NilError(t, repo.UpdateStatus(ctx, id, domain.OrderStatusRejected))
	got, err := repo.GetByID(ctx, id)
	assert.NilError(t, err)
	assert.Equal(t, got.Status, domain.OrderStatusRejected)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", domain.OrderStatusAccepted), ErrOrderNotFound)
}

func TestMemoryRepository_ListByUserSortedDescending(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := repo.Create(ctx, &domain.Order{UserUID: "user1", Name: name})
		assert.NilError(t, err)
	}
	_, err := repo.Create(ctx, &domain.Order{UserUID: "other", Name: "foreign"})
	assert.NilError(t, err)

	orders, err := repo.ListByUser(ctx, "user1")
	assert.NilError(t, err)
	assert.Equal(t, len(orders), 3)
	assert.Equal(t, orders[0].Name, "third")
	assert.Equal(t, orders[1].Name, "second")
	assert.Equal(t, orders[2].Name, "first")
}
