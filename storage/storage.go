// Package storage holds the persistence layer of the storefront: one Storage
// interface with an in-memory implementation, a gorm implementation for
// MySQL/Postgres, and a Redis read-through decorator for the catalog.
package storage

import (
	"context"
	"fmt"

	"github.com/Kariqs/camiu-api/models"
)

type UserStore interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	// GetUserByLogin looks a user up by username or e-mail address.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

type CatalogStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uint) error

	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	// UpdateProduct applies patch to the stored row under a row lock, so a
	// concurrent checkout's stock decrement is never overwritten.
	UpdateProduct(ctx context.Context, id uint, patch models.ProductPatch) (*models.Product, error)
	// AddProductImages appends urls to the product's images. The first url
	// becomes the main image when the product has none.
	AddProductImages(ctx context.Context, id uint, urls []string) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type ReviewStore interface {
	ListReviews(ctx context.Context, productID uint) ([]models.Review, error)
	CreateReview(ctx context.Context, review *models.Review) error
}

type CartStore interface {
	ListCartItems(ctx context.Context, userID uint) ([]models.CartItem, error)
	GetCartItem(ctx context.Context, id uint) (*models.CartItem, error)
	// AddToCart creates the line or, when the user already has one for the
	// product, adds the quantity to it. The stored line is returned.
	AddToCart(ctx context.Context, item models.CartItem) (*models.CartItem, error)
	UpdateCartItem(ctx context.Context, item *models.CartItem) error
	DeleteCartItem(ctx context.Context, id uint) error
	ClearCart(ctx context.Context, userID uint) error
}

type OrderStore interface {
	// PlaceOrder turns the user's cart into an order in a single atomic step.
	// replayed is true when the idempotency key matched an existing order.
	PlaceOrder(ctx context.Context, checkout Checkout) (order *models.Order, replayed bool, err error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uint, status models.PaymentStatus, reference string) error
}

type Storage interface {
	UserStore
	CatalogStore
	ReviewStore
	CartStore
	OrderStore
}

// ProductFilter narrows ListProducts. Zero values mean "no constraint"; all
// set constraints must hold.
type ProductFilter struct {
	CategoryID uint
	Featured   bool
	New        bool
	Bestseller bool
	Search     string
}

func (f ProductFilter) key() string {
	return fmt.Sprintf("c=%d:f=%t:n=%t:b=%t:q=%s", f.CategoryID, f.Featured, f.New, f.Bestseller, f.Search)
}

type OrderFilter struct {
	// UserID restricts the listing to one customer; zero lists every order.
	UserID    uint
	Status    models.OrderStatus
	Page      int
	Limit     int
	Ascending bool
}

func (f OrderFilter) offset() int {
	if f.Page <= 1 || f.Limit <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

type Checkout struct {
	UserID          uint
	ShippingAddress models.Address
	PaymentMethod   models.PaymentMethod
	IdempotencyKey  string
}
