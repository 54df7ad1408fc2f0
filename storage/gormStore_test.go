package storage

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/Kariqs/camiu-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newGormStore connects to TEST_DATABASE_URL (a Postgres DSN) and resets the
// schema. Tests using it are skipped when the variable is unset.
func newGormStore(t *testing.T) *GormStore {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	tables := []any{&models.OrderItem{}, &models.Order{}, &models.CartItem{}, &models.Review{},
		&models.Product{}, &models.Category{}, &models.User{}}
	require.NoError(t, db.Migrator().DropTable(tables...))
	require.NoError(t, db.AutoMigrate(tables...))

	return NewGormStore(db)
}

func TestGormStore_Checkout(t *testing.T) {
	store := newGormStore(t)
	ctx := context.Background()

	user := &models.User{Username: "jane", Email: "jane@example.com", Password: "x"}
	require.NoError(t, store.CreateUser(ctx, user))
	assert.ErrorIs(t, store.CreateUser(ctx, &models.User{Username: "jane", Email: "other@example.com", Password: "x"}), ErrDuplicate)

	category := &models.Category{Name: "Skincare"}
	require.NoError(t, store.CreateCategory(ctx, category))
	product := &models.Product{
		Name:        "Night Cream",
		Description: "Rich",
		Price:       decimal.RequireFromString("40.00"),
		Image:       "https://cdn.example.com/cream.jpg",
		CategoryID:  category.ID,
		Stock:       5,
	}
	require.NoError(t, store.CreateProduct(ctx, product))

	_, err := store.AddToCart(ctx, models.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	checkout := Checkout{UserID: user.ID, ShippingAddress: testAddress, PaymentMethod: models.PaymentMethodCashOnDelivery, IdempotencyKey: "k1"}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		orderIDs = map[uint]bool{}
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, _, err := store.PlaceOrder(ctx, checkout)
			if err != nil {
				assert.ErrorIs(t, err, ErrCartEmpty)
				return
			}
			mu.Lock()
			orderIDs[order.ID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, orderIDs, 1)

	stored, err := store.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Stock)

	orders, count, err := store.ListOrders(ctx, OrderFilter{UserID: user.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Len(t, orders[0].Items, 1)
	assert.True(t, orders[0].Total.Equal(decimal.RequireFromString("80")))

	_, err = store.UpdateOrderStatus(ctx, orders[0].ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	stored, err = store.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Stock)

	_, err = store.UpdateOrderStatus(ctx, orders[0].ID, models.OrderStatusProcessing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGormStore_UpdateProductKeepsCheckoutStock(t *testing.T) {
	store := newGormStore(t)
	ctx := context.Background()

	user := &models.User{Username: "jane", Email: "Jane@Example.com", Password: "x"}
	require.NoError(t, store.CreateUser(ctx, user))
	byEmail, err := store.GetUserByLogin(ctx, "JANE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	category := &models.Category{Name: "Makeup"}
	require.NoError(t, store.CreateCategory(ctx, category))
	product := &models.Product{
		Name:        "Lip Tint",
		Description: "Sheer",
		Price:       decimal.RequireFromString("12.00"),
		Image:       "https://cdn.example.com/tint.jpg",
		CategoryID:  category.ID,
		Stock:       5,
	}
	require.NoError(t, store.CreateProduct(ctx, product))

	stale, err := store.GetProduct(ctx, product.ID)
	require.NoError(t, err)

	_, err = store.AddToCart(ctx, models.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)
	_, _, err = store.PlaceOrder(ctx, Checkout{UserID: user.ID, ShippingAddress: testAddress, PaymentMethod: models.PaymentMethodBankTransfer})
	require.NoError(t, err)

	name := stale.Name + " Duo"
	updated, err := store.UpdateProduct(ctx, product.ID, models.ProductPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Stock)

	_, err = store.AddProductImages(ctx, product.ID, []string{"https://cdn.example.com/tint-2.jpg"})
	require.NoError(t, err)

	stored, err := store.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lip Tint Duo", stored.Name)
	assert.Equal(t, 2, stored.Stock)
	assert.Equal(t, []string{"https://cdn.example.com/tint-2.jpg"}, []string(stored.Images))
}

func TestGormStore_DeleteCategory(t *testing.T) {
	store := newGormStore(t)
	ctx := context.Background()

	used := &models.Category{Name: "Skincare"}
	require.NoError(t, store.CreateCategory(ctx, used))
	require.NoError(t, store.CreateProduct(ctx, &models.Product{
		Name: "Toner", Description: "Fresh", Price: decimal.NewFromInt(9),
		Image: "https://cdn.example.com/toner.jpg", CategoryID: used.ID, Stock: 1,
	}))
	assert.ErrorIs(t, store.DeleteCategory(ctx, used.ID), ErrConflict)

	empty := &models.Category{Name: "Fragrances"}
	require.NoError(t, store.CreateCategory(ctx, empty))
	require.NoError(t, store.DeleteCategory(ctx, empty.ID))
	assert.ErrorIs(t, store.DeleteCategory(ctx, empty.ID), ErrNotFound)

	err := store.CreateProduct(ctx, &models.Product{
		Name: "Mist", Description: "Light", Price: decimal.NewFromInt(15),
		Image: "https://cdn.example.com/mist.jpg", CategoryID: empty.ID, Stock: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
