// Package events carries order notifications out of the request path: to a
// webhook, to live admin websocket clients, or both.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/Kariqs/camiu-api/models"
	"github.com/shopspring/decimal"
)

type Type string

const (
	OrderCreated        Type = "order.created"
	OrderStatusChanged  Type = "order.status_changed"
	OrderPaymentUpdated Type = "order.payment_updated"
)

type Event struct {
	Type          Type                 `json:"type"`
	OrderID       uint                 `json:"orderId"`
	Reference     string               `json:"reference"`
	UserID        uint                 `json:"userId"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	Total         decimal.Decimal      `json:"total"`
	At            time.Time            `json:"at"`
}

func NewOrderEvent(t Type, order *models.Order) Event {
	return Event{
		Type:          t,
		OrderID:       order.ID,
		Reference:     order.Reference,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Total:         order.Total,
		At:            time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
