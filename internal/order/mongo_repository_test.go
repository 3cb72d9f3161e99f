package order

import (
	"context"
	"testing"
	"time"

	"github.com/sherinaayu/prototype-ecommerce/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestDB(t *testing.T) OrderRepository {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	return NewMongoRepository(db)
}

// setupReplicaSetDB starts a single-node replica set; Watch needs one for
// change streams, the other methods run against a standalone.
func setupReplicaSetDB(t *testing.T) OrderRepository {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	return NewMongoRepository(db)
}

func awaitWatchUpdate(t *testing.T, updates <-chan []domain.Order, match func([]domain.Order) bool) {
	t.Helper()
	deadline := time.After(15 * time.Second)
	for {
		select {
		case orders, ok := <-updates:
			require.True(t, ok, "watch channel closed before a matching update arrived")
			if match(orders) {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for watch update")
		}
	}
}

func TestMongoCreate_AssignsIDAndPendingStatus(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	o := &domain.Order{
		Name:        "Ayu",
		Email:       "ayu@example.com",
		Address:     "Jl. Melati 5",
		UserUID:     "user1",
		TotalItems:  2,
		TotalAmount: 2100,
		Status:      domain.OrderStatusPending,
		Items: []domain.CartItem{
			{ProductID: "a", Title: "thing", Price: "1000", Quantity: 2},
		},
	}

	id, err := repo.Create(ctx, o)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
	assert.Equal(t, "user1", got.UserUID)
	assert.Equal(t, 2100.0, got.TotalAmount)
	assert.Empty(t, got.OrderID, "order_id is only set by the backfill write")
	require.Len(t, got.Items, 1)
	assert.Equal(t, domain.Amount("1000"), got.Items[0].Price)
}

func TestMongoSetOrderID_Backfill(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, &domain.Order{UserUID: "user1", Status: domain.OrderStatusPending})
	require.NoError(t, err)

	require.NoError(t, repo.SetOrderID(ctx, id))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.OrderID)
}

func TestMongoUpdateStatus(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, &domain.Order{UserUID: "user1", Status: domain.OrderStatusPending})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, id, domain.OrderStatusAccepted))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAccepted, got.Status)
}

func TestMongoUpdateStatus_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.UpdateStatus(context.Background(), "64f000000000000000000000", domain.OrderStatusAccepted)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMongoListByUser_FilteredAndSorted(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := repo.Create(ctx, &domain.Order{UserUID: "user1", Name: name, Status: domain.OrderStatusPending})
		require.NoError(t, err)
		// BSON datetimes have millisecond precision; keep the sort key distinct.
		time.Sleep(5 * time.Millisecond)
	}
	_, err := repo.Create(ctx, &domain.Order{UserUID: "other", Name: "foreign", Status: domain.OrderStatusPending})
	require.NoError(t, err)

	orders, err := repo.ListByUser(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "third", orders[0].Name)
	assert.Equal(t, "second", orders[1].Name)
	assert.Equal(t, "first", orders[2].Name)
}

func TestMongoWatch_SnapshotAndPushes(t *testing.T) {
	repo := setupReplicaSetDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	firstID, err := repo.Create(ctx, &domain.Order{UserUID: "user1", Name: "first", Status: domain.OrderStatusPending})
	require.NoError(t, err)

	updates, err := repo.Watch(ctx, "user1")
	require.NoError(t, err)

	// The current list arrives before any change.
	awaitWatchUpdate(t, updates, func(orders []domain.Order) bool {
		return len(orders) == 1 && orders[0].Name == "first"
	})

	// A new order pushes a fresh list, most recent first.
	time.Sleep(5 * time.Millisecond)
	_, err = repo.Create(ctx, &domain.Order{UserUID: "user1", Name: "second", Status: domain.OrderStatusPending})
	require.NoError(t, err)
	awaitWatchUpdate(t, updates, func(orders []domain.Order) bool {
		return len(orders) == 2 && orders[0].Name == "second"
	})

	// An external status mutation pushes as well.
	require.NoError(t, repo.UpdateStatus(ctx, firstID, domain.OrderStatusAccepted))
	awaitWatchUpdate(t, updates, func(orders []domain.Order) bool {
		for _, o := range orders {
			if o.Name == "first" && o.Status == domain.OrderStatusAccepted {
				return true
			}
		}
		return false
	})
}

func TestMongoWatch_CancelClosesChannel(t *testing.T) {
	repo := setupReplicaSetDB(t)
	ctx, cancel := context.WithCancel(context.Background())

	updates, err := repo.Watch(ctx, "user1")
	require.NoError(t, err)

	awaitWatchUpdate(t, updates, func(orders []domain.Order) bool {
		return len(orders) == 0
	})

	cancel()
	deadline := time.After(15 * time.Second)
	for {
		select {
		case _, ok := <-updates:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for channel close")
		}
	}
}
