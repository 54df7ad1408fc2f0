package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"

	PaymentMethodCreditCard     PaymentMethod = "credit_card"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// orderTransitions lists, for each status, the statuses an admin may move an order to.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := orderTransitions[status]; !ok {
		return "", fmt.Errorf("invalid order status %q", s)
	}
	return status, nil
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Address struct {
	FullName     string `json:"fullName" binding:"required,max=255"`
	AddressLine1 string `json:"addressLine1" binding:"required,max=255"`
	AddressLine2 string `json:"addressLine2" binding:"max=255"`
	City         string `json:"city" binding:"required,max=128"`
	State        string `json:"state" binding:"required,max=128"`
	PostalCode   string `json:"postalCode" binding:"required,max=32"`
	Country      string `json:"country" binding:"required,max=128"`
	Phone        string `json:"phone" binding:"required,max=32"`
}

type Order struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	Reference        string                      `gorm:"uniqueIndex;size:64;not null" json:"reference"`
	UserID           uint                        `gorm:"index;uniqueIndex:idx_order_idempotency;not null" json:"userId"`
	Total            decimal.Decimal             `gorm:"type:decimal(12,2);not null" json:"total"`
	Status           OrderStatus                 `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`
	ShippingAddress  datatypes.JSONType[Address] `gorm:"not null" json:"shippingAddress"`
	PaymentMethod    PaymentMethod               `gorm:"type:varchar(32);not null" json:"paymentMethod"`
	PaymentStatus    PaymentStatus               `gorm:"type:varchar(20);not null;default:'pending'" json:"paymentStatus"`
	PaymentReference string                      `gorm:"size:255;index" json:"paymentReference,omitempty"`
	IdempotencyKey   *string                     `gorm:"size:128;uniqueIndex:idx_order_idempotency" json:"-"`
	Items            []OrderItem                 `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt        time.Time                   `json:"createdAt"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
}

type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"index;not null" json:"orderId"`
	ProductID   uint            `gorm:"index;not null" json:"productId"`
	ProductName string          `gorm:"size:255" json:"productName"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Variant     *string         `gorm:"size:64" json:"variant"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal recomputes the order total from its items.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

type PlaceOrderData struct {
	ShippingAddress Address       `json:"shippingAddress"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" binding:"required,oneof=credit_card bank_transfer cash_on_delivery"`
}

type OrderStatusData struct {
	Status string `json:"status" binding:"required"`
}

// NewOrderReference builds the customer-facing order reference, e.g.
// 20250908130500-6f1c0a9e-...
func NewOrderReference(now time.Time) string {
	return now.Format("20060102150405") + "-" + uuid.NewString()
}
