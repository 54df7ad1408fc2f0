package models

import "time"

// Default quantity when a cart request leaves it out.
const DefaultCartQuantity = 1

type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_cart_user_product;not null" json:"userId"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_user_product;not null" json:"productId"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Variant   *string   `gorm:"size:64" json:"variant"`
	CreatedAt time.Time `json:"createdAt"`
}

// CartLine is a cart item with the product it points at, as returned by GET /api/cart.
type CartLine struct {
	CartItem
	Product *Product `json:"product"`
}

type NewCartItem struct {
	ProductID uint    `json:"productId" binding:"required"`
	Quantity  int     `json:"quantity" binding:"omitempty,min=1,max=99"`
	Variant   *string `json:"variant" binding:"omitempty,max=64"`
}

type CartItemPatch struct {
	Quantity *int    `json:"quantity" binding:"omitempty,min=1,max=99"`
	Variant  *string `json:"variant" binding:"omitempty,max=64"`
}
