package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/sherinaayu/prototype-ecommerce/internal/domain"
)

const orderPlacedTopic = "order-placed"

type OrderPlacedEvent struct {
	OrderID     string  `json:"order_id"`
	UserUID     string  `json:"user_uid"`
	TotalItems  int     `json:"total_items"`
	TotalAmount float64 `json:"total_amount"`
	Status      string  `json:"status"`
}

// Publisher announces placed orders on the order-placed topic so the
// seller side can pick them up for review.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  orderPlacedTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w}
}

func (p *Publisher) OrderPlaced(ctx context.Context, o domain.Order) error {
	event := OrderPlacedEvent{
		OrderID:     o.ID.Hex(),
		UserUID:     o.UserUID,
		TotalItems:  o.TotalItems,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order-placed event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(o.ID.Hex()),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write order-placed event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
