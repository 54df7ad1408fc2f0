package storage

import (
	"fmt"
	"sort"
	"time"

	"github.com/Kariqs/camiu-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PriceLines snapshots every cart line at its product's effective price. A
// line whose product is gone or short on stock fails the whole checkout.
func PriceLines(cart []models.CartItem, products map[uint]models.Product) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(cart))
	total := decimal.Zero

	for _, line := range cart {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: product %d", ErrProductUnavailable, line.ProductID)
		}
		if product.Stock < line.Quantity {
			return nil, decimal.Zero, fmt.Errorf("%w: product %d has %d left", ErrInsufficientStock, product.ID, product.Stock)
		}

		item := models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			Price:       product.EffectivePrice(),
			Variant:     line.Variant,
		}
		total = total.Add(item.Subtotal())
		items = append(items, item)
	}

	return items, total, nil
}

func newPendingOrder(checkout Checkout, items []models.OrderItem, total decimal.Decimal) models.Order {
	order := models.Order{
		Reference:       models.NewOrderReference(time.Now()),
		UserID:          checkout.UserID,
		Total:           total,
		Status:          models.OrderStatusPending,
		ShippingAddress: datatypes.NewJSONType(checkout.ShippingAddress),
		PaymentMethod:   checkout.PaymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
		Items:           items,
	}
	if checkout.IdempotencyKey != "" {
		key := checkout.IdempotencyKey
		order.IdempotencyKey = &key
	}
	return order
}

// cartProductIDs returns the distinct product ids of a cart in ascending
// order, the order in which product rows are locked.
func cartProductIDs(cart []models.CartItem) []uint {
	seen := make(map[uint]struct{}, len(cart))
	ids := make([]uint, 0, len(cart))
	for _, line := range cart {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
