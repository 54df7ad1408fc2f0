package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/Kariqs/camiu-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddress = models.Address{
	FullName:     "Jane Doe",
	AddressLine1: "1 Main St",
	City:         "Springfield",
	State:        "IL",
	PostalCode:   "62701",
	Country:      "US",
	Phone:        "555-0100",
}

type fixture struct {
	store    *MemoryStore
	user     *models.User
	category *models.Category
	serum    *models.Product
	lipstick *models.Product
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := NewMemoryStore()

	user := &models.User{Username: "jane", Email: "jane@example.com", Password: "x"}
	require.NoError(t, store.CreateUser(ctx, user))

	category := &models.Category{Name: "Skincare"}
	require.NoError(t, store.CreateCategory(ctx, category))

	serum := &models.Product{
		Name:       "Vitamin C Serum",
		Price:      decimal.RequireFromString("29.99"),
		SalePrice:  decimal.NewNullDecimal(decimal.RequireFromString("24.99")),
		CategoryID: category.ID,
		Stock:      10,
		Featured:   true,
	}
	require.NoError(t, store.CreateProduct(ctx, serum))

	lipstick := &models.Product{
		Name:       "Matte Lipstick",
		Price:      decimal.RequireFromString("15.50"),
		CategoryID: category.ID,
		Stock:      3,
		New:        true,
	}
	require.NoError(t, store.CreateProduct(ctx, lipstick))

	return fixture{store: store, user: user, category: category, serum: serum, lipstick: lipstick}
}

func (f fixture) addToCart(t *testing.T, productID uint, quantity int) {
	t.Helper()
	_, err := f.store.AddToCart(context.Background(), models.CartItem{UserID: f.user.ID, ProductID: productID, Quantity: quantity})
	require.NoError(t, err)
}

func (f fixture) checkout(key string) Checkout {
	return Checkout{
		UserID:          f.user.ID,
		ShippingAddress: testAddress,
		PaymentMethod:   models.PaymentMethodCreditCard,
		IdempotencyKey:  key,
	}
}

func (f fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := f.store.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestMemoryStore_DuplicateUser(t *testing.T) {
	f := newFixture(t)
	err := f.store.CreateUser(context.Background(), &models.User{Username: "other", Email: "JANE@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryStore_GetUserByLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	byName, err := f.store.GetUserByLogin(ctx, "jane")
	require.NoError(t, err)
	byEmail, err := f.store.GetUserByLogin(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, byName.ID, byEmail.ID)

	mixed, err := f.store.GetUserByLogin(ctx, " Jane@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, byName.ID, mixed.ID)

	_, err = f.store.GetUserByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListProductsFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	featured, err := f.store.ListProducts(ctx, ProductFilter{Featured: true})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, f.serum.ID, featured[0].ID)

	none, err := f.store.ListProducts(ctx, ProductFilter{Featured: true, New: true})
	require.NoError(t, err)
	assert.Empty(t, none)

	search, err := f.store.ListProducts(ctx, ProductFilter{Search: "LIPSTICK", CategoryID: f.category.ID})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, f.lipstick.ID, search[0].ID)

	all, err := f.store.ListProducts(ctx, ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryStore_CreateProductUnknownCategory(t *testing.T) {
	f := newFixture(t)
	err := f.store.CreateProduct(context.Background(), &models.Product{Name: "x", Price: decimal.NewFromInt(1), CategoryID: 99})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMemoryStore_DeleteCategoryWithProducts(t *testing.T) {
	f := newFixture(t)
	err := f.store.DeleteCategory(context.Background(), f.category.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStore_AddToCartMergesLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addToCart(t, f.serum.ID, 2)
	f.addToCart(t, f.serum.ID, 3)

	cart, err := f.store.ListCartItems(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 5, cart[0].Quantity)

	_, err = f.store.AddToCart(ctx, models.CartItem{UserID: f.user.ID, ProductID: f.serum.ID, Quantity: 6})
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestMemoryStore_PlaceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addToCart(t, f.serum.ID, 2)
	f.addToCart(t, f.lipstick.ID, 1)

	order, replayed, err := f.store.PlaceOrder(ctx, f.checkout(""))
	require.NoError(t, err)
	assert.False(t, replayed)

	require.Len(t, order.Items, 2)
	// 2 x 24.99 (sale) + 1 x 15.50
	assert.True(t, order.Total.Equal(decimal.RequireFromString("65.48")), "total %s", order.Total)
	assert.True(t, order.Total.Equal(order.ItemsTotal()))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, testAddress, order.ShippingAddress.Data())
	assert.NotEmpty(t, order.Reference)

	assert.Equal(t, 8, f.stock(t, f.serum.ID))
	assert.Equal(t, 2, f.stock(t, f.lipstick.ID))

	cart, err := f.store.ListCartItems(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestMemoryStore_UpdateProductKeepsCheckoutStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// An admin edit that read the product before a checkout committed.
	stale, err := f.store.GetProduct(ctx, f.lipstick.ID)
	require.NoError(t, err)
	require.Equal(t, 3, stale.Stock)

	f.addToCart(t, f.lipstick.ID, 2)
	_, _, err = f.store.PlaceOrder(ctx, f.checkout(""))
	require.NoError(t, err)

	name := stale.Name + " Limited"
	updated, err := f.store.UpdateProduct(ctx, f.lipstick.ID, models.ProductPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Matte Lipstick Limited", updated.Name)
	assert.Equal(t, 1, updated.Stock)
	assert.Equal(t, 1, f.stock(t, f.lipstick.ID))

	withImages, err := f.store.AddProductImages(ctx, f.lipstick.ID, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.jpg", withImages.Image)
	assert.Len(t, withImages.Images, 2)
	assert.Equal(t, 1, f.stock(t, f.lipstick.ID))

	_, err = f.store.UpdateProduct(ctx, 99, models.ProductPatch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	category := uint(99)
	_, err = f.store.UpdateProduct(ctx, f.lipstick.ID, models.ProductPatch{CategoryID: &category})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMemoryStore_PlaceOrderEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.store.PlaceOrder(context.Background(), f.checkout(""))
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestMemoryStore_PlaceOrderInsufficientStockLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addToCart(t, f.serum.ID, 1)
	f.addToCart(t, f.lipstick.ID, 3)

	// Stock drops under the cart quantity after the line was added.
	stock := 1
	_, err := f.store.UpdateProduct(ctx, f.lipstick.ID, models.ProductPatch{Stock: &stock})
	require.NoError(t, err)

	_, _, err = f.store.PlaceOrder(ctx, f.checkout(""))
	assert.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 10, f.stock(t, f.serum.ID))
	assert.Equal(t, 1, f.stock(t, f.lipstick.ID))

	cart, err := f.store.ListCartItems(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, cart, 2)

	orders, count, err := f.store.ListOrders(ctx, OrderFilter{UserID: f.user.ID})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, orders)
}

func TestMemoryStore_DeleteProductDropsCartLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addToCart(t, f.serum.ID, 1)
	f.addToCart(t, f.lipstick.ID, 1)
	require.NoError(t, f.store.DeleteProduct(ctx, f.lipstick.ID))

	cart, err := f.store.ListCartItems(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, f.serum.ID, cart[0].ProductID)
}

func TestMemoryStore_PlaceOrderIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addToCart(t, f.serum.ID, 1)
	first, replayed, err := f.store.PlaceOrder(ctx, f.checkout("key-1"))
	require.NoError(t, err)
	assert.False(t, replayed)

	// Same key again, even with a new cart, returns the original order.
	f.addToCart(t, f.lipstick.ID, 1)
	second, replayed, err := f.store.PlaceOrder(ctx, f.checkout("key-1"))
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 9, f.stock(t, f.serum.ID))
	assert.Equal(t, 3, f.stock(t, f.lipstick.ID))
}

func TestMemoryStore_ConcurrentCheckoutPlacesOneOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addToCart(t, f.serum.ID, 2)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		placed    int
		emptyCart int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.store.PlaceOrder(ctx, f.checkout(""))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case assert.ErrorIs(t, err, ErrCartEmpty):
				emptyCart++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, placed)
	assert.Equal(t, workers-1, emptyCart)
	assert.Equal(t, 8, f.stock(t, f.serum.ID))
}

func TestMemoryStore_UpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addToCart(t, f.lipstick.ID, 2)
	order, _, err := f.store.PlaceOrder(ctx, f.checkout(""))
	require.NoError(t, err)
	assert.Equal(t, 1, f.stock(t, f.lipstick.ID))

	updated, err := f.store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, updated.Status)

	_, err = f.store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	cancelled, err := f.store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 3, f.stock(t, f.lipstick.ID))

	// Cancelling again is a no-op and must not restock twice.
	_, err = f.store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 3, f.stock(t, f.lipstick.ID))

	_, err = f.store.UpdateOrderStatus(ctx, 999, models.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListOrdersPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.addToCart(t, f.serum.ID, 1)
		_, _, err := f.store.PlaceOrder(ctx, f.checkout(""))
		require.NoError(t, err)
	}

	page, count, err := f.store.ListOrders(ctx, OrderFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	require.Len(t, page, 1)
	assert.EqualValues(t, 1, page[0].ID)

	asc, _, err := f.store.ListOrders(ctx, OrderFilter{Limit: 2, Ascending: true})
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.EqualValues(t, 1, asc[0].ID)

	pending, count, err := f.store.ListOrders(ctx, OrderFilter{Status: models.OrderStatusShipped})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, pending)
}
