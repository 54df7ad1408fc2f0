package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Kariqs/camiu-api/models"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultCacheTTL  = 5 * time.Minute
	notFoundCacheTTL = time.Minute

	notFoundMarker     = "notfound"
	productsVersionKey = "products:version"
	categoriesKey      = "categories:all"
)

// CachedStore is a read-through Redis cache in front of another Storage.
// Catalog reads are served from Redis when possible; every write that can
// change a product or category invalidates the affected keys. Redis failures
// are logged and the read falls through to the wrapped store.
type CachedStore struct {
	Storage
	rdb *redis.Client
	ttl time.Duration
}

func NewCachedStore(store Storage, rdb *redis.Client, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{Storage: store, rdb: rdb, ttl: ttl}
}

func productKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *CachedStore) getJSON(ctx context.Context, key string, dst any) (hit bool, notFound bool) {
	raw, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, false
	}
	if err != nil {
		log.Printf("cache: get %s: %v", key, err)
		return false, false
	}
	if raw == notFoundMarker {
		return true, true
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		log.Printf("cache: decode %s: %v", key, err)
		return false, false
	}
	return true, false
}

func (s *CachedStore) setJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: encode %s: %v", key, err)
		return
	}
	if err := s.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
}

func (s *CachedStore) del(ctx context.Context, keys ...string) {
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache: del %v: %v", keys, err)
	}
}

func (s *CachedStore) productsVersion(ctx context.Context) (int64, bool) {
	v, err := s.rdb.Get(ctx, productsVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		log.Printf("cache: get %s: %v", productsVersionKey, err)
		return 0, false
	}
	return v, true
}

// invalidateProducts drops the cached product (if any) and bumps the list
// version so every cached listing goes stale at once.
func (s *CachedStore) invalidateProducts(ctx context.Context, ids ...uint) {
	if len(ids) > 0 {
		keys := make([]string, 0, len(ids))
		for _, id := range ids {
			keys = append(keys, productKey(id))
		}
		s.del(ctx, keys...)
	}
	if err := s.rdb.Incr(ctx, productsVersionKey).Err(); err != nil {
		log.Printf("cache: incr %s: %v", productsVersionKey, err)
	}
}

// Categories

func (s *CachedStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if hit, _ := s.getJSON(ctx, categoriesKey, &categories); hit {
		return categories, nil
	}

	categories, err := s.Storage.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	s.setJSON(ctx, categoriesKey, categories, s.ttl)
	return categories, nil
}

func (s *CachedStore) CreateCategory(ctx context.Context, category *models.Category) error {
	if err := s.Storage.CreateCategory(ctx, category); err != nil {
		return err
	}
	s.del(ctx, categoriesKey)
	return nil
}

func (s *CachedStore) UpdateCategory(ctx context.Context, category *models.Category) error {
	if err := s.Storage.UpdateCategory(ctx, category); err != nil {
		return err
	}
	s.del(ctx, categoriesKey)
	return nil
}

func (s *CachedStore) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.Storage.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.del(ctx, categoriesKey)
	return nil
}

// Products

func (s *CachedStore) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	version, ok := s.productsVersion(ctx)
	if !ok {
		return s.Storage.ListProducts(ctx, filter)
	}

	key := fmt.Sprintf("products:v%d:%s", version, filter.key())
	var products []models.Product
	if hit, _ := s.getJSON(ctx, key, &products); hit {
		return products, nil
	}

	products, err := s.Storage.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.setJSON(ctx, key, products, s.ttl)
	return products, nil
}

func (s *CachedStore) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	key := productKey(id)

	var product models.Product
	if hit, notFound := s.getJSON(ctx, key, &product); hit {
		if notFound {
			return nil, ErrNotFound
		}
		return &product, nil
	}

	stored, err := s.Storage.GetProduct(ctx, id)
	if errors.Is(err, ErrNotFound) {
		if err := s.rdb.Set(ctx, key, notFoundMarker, notFoundCacheTTL).Err(); err != nil {
			log.Printf("cache: set %s: %v", key, err)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	s.setJSON(ctx, key, stored, s.ttl)
	return stored, nil
}

func (s *CachedStore) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.Storage.CreateProduct(ctx, product); err != nil {
		return err
	}
	s.invalidateProducts(ctx, product.ID)
	return nil
}

func (s *CachedStore) UpdateProduct(ctx context.Context, id uint, patch models.ProductPatch) (*models.Product, error) {
	product, err := s.Storage.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidateProducts(ctx, id)
	return product, nil
}

func (s *CachedStore) AddProductImages(ctx context.Context, id uint, urls []string) (*models.Product, error) {
	product, err := s.Storage.AddProductImages(ctx, id, urls)
	if err != nil {
		return nil, err
	}
	s.invalidateProducts(ctx, id)
	return product, nil
}

func (s *CachedStore) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Storage.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidateProducts(ctx, id)
	return nil
}

// Orders change stock, which is part of the cached product.

func (s *CachedStore) PlaceOrder(ctx context.Context, checkout Checkout) (*models.Order, bool, error) {
	order, replayed, err := s.Storage.PlaceOrder(ctx, checkout)
	if err != nil {
		return nil, false, err
	}
	if !replayed {
		s.invalidateProducts(ctx, orderProductIDs(order)...)
	}
	return order, replayed, nil
}

func (s *CachedStore) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	order, err := s.Storage.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if status == models.OrderStatusCancelled {
		s.invalidateProducts(ctx, orderProductIDs(order)...)
	}
	return order, nil
}

func orderProductIDs(order *models.Order) []uint {
	ids := make([]uint, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
