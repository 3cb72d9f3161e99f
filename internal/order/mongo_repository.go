package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sherinaayu/prototype-ecommerce/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ordersCollection = "orders"

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) OrderRepository {
	return &mongoRepository{collection: db.Collection(ordersCollection)}
}

func (m *mongoRepository) Create(ctx context.Context, o *domain.Order) (string, error) {
	o.ID = primitive.NilObjectID
	o.CreatedAt = time.Now()

	res, err := m.collection.InsertOne(ctx, o)
	if err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	o.ID = oid
	return oid.Hex(), nil
}

func (m *mongoRepository) SetOrderID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", id, err)
	}

	res, err := m.collection.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"order_id": id}})
	if err != nil {
		return fmt.Errorf("failed to set order id: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (m *mongoRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", id, err)
	}

	res, err := m.collection.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (m *mongoRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order id %q: %w", id, err)
	}

	var o domain.Order
	err = m.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

func (m *mongoRepository) ListByUser(ctx context.Context, userUID string) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.collection.Find(ctx, bson.M{"user_uid": userUID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// Watch opens a change stream filtered to the user's orders and re-queries
// the full ordered list on every event. The initial list is delivered
// before any change. Requires a replica set, as change streams do.
func (m *mongoRepository) Watch(ctx context.Context, userUID string) (<-chan []domain.Order, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"fullDocument.user_uid": userUID}}},
	}
	streamOpts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := m.collection.Watch(ctx, pipeline, streamOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open change stream: %w", err)
	}

	updates := make(chan []domain.Order, 1)

	go func() {
		defer close(updates)
		defer stream.Close(context.Background())

		if !m.sendSnapshot(ctx, userUID, updates) {
			return
		}

		for stream.Next(ctx) {
			if !m.sendSnapshot(ctx, userUID, updates) {
				return
			}
		}
		if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("order change stream for user %s ended: %v", userUID, err)
		}
	}()

	return updates, nil
}

func (m *mongoRepository) sendSnapshot(ctx context.Context, userUID string, updates chan<- []domain.Order) bool {
	orders, err := m.ListByUser(ctx, userUID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("failed to re-query orders for user %s: %v", userUID, err)
		}
		return false
	}
	select {
	case updates <- orders:
		return true
	case <-ctx.Done():
		return false
	}
}
