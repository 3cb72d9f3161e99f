package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusAccepted OrderStatus = "accepted"
	OrderStatusRejected OrderStatus = "rejected"
)

// ValidDecision reports whether s is a status a seller may move a pending
// order to.
func ValidDecision(s OrderStatus) bool {
	return s == OrderStatusAccepted || s == OrderStatusRejected
}

// BuyerInfo carries the checkout form fields. Format validation is the
// input layer's concern.
type BuyerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Order is the durable record of a completed checkout. The persistence
// layer assigns ID and CreatedAt; OrderID is the same id written back into
// the record in a second update so the document is self-describing. An
// order never gains or loses items after creation, only Status changes.
type Order struct {
	ID          primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	OrderID     string             `json:"order_id,omitempty" bson:"order_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Email       string             `json:"email" bson:"email"`
	Address     string             `json:"address" bson:"address"`
	UserUID     string             `json:"user_uid" bson:"user_uid"`
	TotalItems  int                `json:"total_items" bson:"total_items"`
	TotalAmount float64            `json:"total_amount" bson:"total_amount"`
	Items       []CartItem         `json:"items" bson:"items"`
	Status      OrderStatus        `json:"status" bson:"status"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

// ItemRow is the display projection of one ordered item. Price rounding
// happens only here, never in the stored snapshot.
type ItemRow struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Image    string `json:"image,omitempty"`
}

// ItemRows projects the order's item snapshot for display. An unparseable
// price renders as 0 rather than dropping the row.
func ItemRows(o Order) []ItemRow {
	rows := make([]ItemRow, len(o.Items))
	for i, item := range o.Items {
		var price int64
		if v, err := item.Price.Float(); err == nil {
			price = int64(math.Round(v))
		}
		rows[i] = ItemRow{
			Name:     item.Title,
			Quantity: item.Quantity,
			Price:    price,
			Image:    item.Image,
		}
	}
	return rows
}
