package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/sherinaayu/prototype-ecommerce/internal/domain"
	"github.com/sherinaayu/prototype-ecommerce/internal/order"
)

const sellerDecisionsTopic = "seller-decisions"

// SellerDecisionEvent is the message the seller-side system emits when it
// accepts or rejects a pending order.
type SellerDecisionEvent struct {
	OrderID  string `json:"order_id"`
	Decision string `json:"decision"`
}

// DecisionConsumer applies seller decisions to the order store. It is the
// only path in this core that mutates an order after creation, and it only
// ever touches the status field.
type DecisionConsumer struct {
	repo   order.OrderRepository
	reader *kafka.Reader
}

func NewDecisionConsumer(repo order.OrderRepository, brokers ...string) *DecisionConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    sellerDecisionsTopic,
		GroupID:  "storefront-decisions",
		MaxBytes: 10e6, // 10MB
	})
	return &DecisionConsumer{repo: repo, reader: reader}
}

func (c *DecisionConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *DecisionConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		fmt.Printf("error closing kafka reader: %v\n", err)
	}
}

func (c *DecisionConsumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Printf("error reading message: %v\n", err)
		return
	}

	if err := c.applyDecision(ctx, m.Value); err != nil {
		fmt.Printf("skipping seller decision: %v\n", err)
	}
}

func (c *DecisionConsumer) applyDecision(ctx context.Context, payload []byte) error {
	var event SellerDecisionEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("parse event: %w", err)
	}

	if event.OrderID == "" {
		return errors.New("missing order_id")
	}

	status := domain.OrderStatus(event.Decision)
	if !domain.ValidDecision(status) {
		return fmt.Errorf("unknown decision %q for order %s", event.Decision, event.OrderID)
	}

	if err := c.repo.UpdateStatus(ctx, event.OrderID, status); err != nil {
		return fmt.Errorf("update order %s: %w", event.OrderID, err)
	}

	fmt.Printf("order %s marked %s\n", event.OrderID, status)
	return nil
}
