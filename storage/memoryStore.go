package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Kariqs/camiu-api/models"
	"gorm.io/datatypes"
)

// MemoryStore keeps everything in maps guarded by one RWMutex. Every write,
// checkout included, runs under the write lock, so checkouts are serialized.
type MemoryStore struct {
	mu sync.RWMutex

	users      map[uint]models.User
	categories map[uint]models.Category
	products   map[uint]models.Product
	reviews    map[uint]models.Review
	cartItems  map[uint]models.CartItem
	orders     map[uint]models.Order
	orderItems map[uint]models.OrderItem

	nextUserID      uint
	nextCategoryID  uint
	nextProductID   uint
	nextReviewID    uint
	nextCartItemID  uint
	nextOrderID     uint
	nextOrderItemID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[uint]models.User),
		categories: make(map[uint]models.Category),
		products:   make(map[uint]models.Product),
		reviews:    make(map[uint]models.Review),
		cartItems:  make(map[uint]models.CartItem),
		orders:     make(map[uint]models.Order),
		orderItems: make(map[uint]models.OrderItem),

		nextUserID:      1,
		nextCategoryID:  1,
		nextProductID:   1,
		nextReviewID:    1,
		nextCartItemID:  1,
		nextOrderID:     1,
		nextOrderItemID: 1,
	}
}

func cloneProduct(p models.Product) models.Product {
	if p.Images != nil {
		p.Images = datatypes.JSONSlice[string](append([]string{}, p.Images...))
	}
	return p
}

// Users

func (s *MemoryStore) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email := models.NormalizeEmail(login)
	for _, u := range s.users {
		if u.Username == login || u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = models.NormalizeEmail(user.Email)
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("%w: username or email already registered", ErrDuplicate)
		}
	}

	user.ID = s.nextUserID
	s.nextUserID++
	user.CreatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

// Categories

func (s *MemoryStore) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *MemoryStore) GetCategory(_ context.Context, id uint) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) categoryNameTaken(name string, exceptID uint) bool {
	for _, c := range s.categories {
		if c.ID != exceptID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateCategory(_ context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categoryNameTaken(category.Name, 0) {
		return fmt.Errorf("%w: category %q", ErrDuplicate, category.Name)
	}
	category.ID = s.nextCategoryID
	s.nextCategoryID++
	s.categories[category.ID] = *category
	return nil
}

func (s *MemoryStore) UpdateCategory(_ context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[category.ID]; !ok {
		return ErrNotFound
	}
	if s.categoryNameTaken(category.Name, category.ID) {
		return fmt.Errorf("%w: category %q", ErrDuplicate, category.Name)
	}
	s.categories[category.ID] = *category
	return nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return ErrNotFound
	}
	for _, p := range s.products {
		if p.CategoryID == id {
			return fmt.Errorf("%w: category %d has products", ErrConflict, id)
		}
	}
	delete(s.categories, id)
	return nil
}

// Products

func (f ProductFilter) matches(p models.Product) bool {
	if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
		return false
	}
	if f.Featured && !p.Featured {
		return false
	}
	if f.New && !p.New {
		return false
	}
	if f.Bestseller && !p.Bestseller {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

func (s *MemoryStore) ListProducts(_ context.Context, filter ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.matches(p) {
			res = append(res, cloneProduct(p))
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id uint) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = cloneProduct(p)
	return &p, nil
}

func (s *MemoryStore) CreateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[product.CategoryID]; !ok {
		return fmt.Errorf("%w: category %d does not exist", ErrInvalidInput, product.CategoryID)
	}
	product.ID = s.nextProductID
	s.nextProductID++
	product.CreatedAt = time.Now()
	s.products[product.ID] = cloneProduct(*product)
	return nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, id uint, patch models.ProductPatch) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	product := cloneProduct(existing)
	patch.Apply(&product)
	if _, ok := s.categories[product.CategoryID]; !ok {
		return nil, fmt.Errorf("%w: category %d does not exist", ErrInvalidInput, product.CategoryID)
	}
	s.products[id] = cloneProduct(product)
	return &product, nil
}

func (s *MemoryStore) AddProductImages(_ context.Context, id uint, urls []string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	product := cloneProduct(existing)
	product.AddImages(urls)
	s.products[id] = cloneProduct(product)
	return &product, nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	for cartID, item := range s.cartItems {
		if item.ProductID == id {
			delete(s.cartItems, cartID)
		}
	}
	return nil
}

// Reviews

func (s *MemoryStore) ListReviews(_ context.Context, productID uint) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := []models.Review{}
	for _, r := range s.reviews {
		if r.ProductID == productID {
			res = append(res, r)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].ID > res[j].ID
	})
	return res, nil
}

func (s *MemoryStore) CreateReview(_ context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[review.ProductID]; !ok {
		return fmt.Errorf("%w: product %d", ErrNotFound, review.ProductID)
	}
	review.ID = s.nextReviewID
	s.nextReviewID++
	review.CreatedAt = time.Now()
	s.reviews[review.ID] = *review
	return nil
}

// Cart

func (s *MemoryStore) userCart(userID uint) []models.CartItem {
	res := []models.CartItem{}
	for _, item := range s.cartItems {
		if item.UserID == userID {
			res = append(res, item)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (s *MemoryStore) ListCartItems(_ context.Context, userID uint) ([]models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.userCart(userID), nil
}

func (s *MemoryStore) GetCartItem(_ context.Context, id uint) (*models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.cartItems[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (s *MemoryStore) AddToCart(_ context.Context, item models.CartItem) (*models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[item.ProductID]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, item.ProductID)
	}

	for id, existing := range s.cartItems {
		if existing.UserID != item.UserID || existing.ProductID != item.ProductID {
			continue
		}
		existing.Quantity += item.Quantity
		if item.Variant != nil {
			existing.Variant = item.Variant
		}
		if existing.Quantity > product.Stock {
			return nil, fmt.Errorf("%w: product %d has %d left", ErrInsufficientStock, product.ID, product.Stock)
		}
		s.cartItems[id] = existing
		return &existing, nil
	}

	if item.Quantity > product.Stock {
		return nil, fmt.Errorf("%w: product %d has %d left", ErrInsufficientStock, product.ID, product.Stock)
	}
	item.ID = s.nextCartItemID
	s.nextCartItemID++
	item.CreatedAt = time.Now()
	s.cartItems[item.ID] = item
	return &item, nil
}

func (s *MemoryStore) UpdateCartItem(_ context.Context, item *models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.cartItems[item.ID]
	if !ok {
		return ErrNotFound
	}
	product, ok := s.products[existing.ProductID]
	if !ok {
		return fmt.Errorf("%w: product %d", ErrProductUnavailable, existing.ProductID)
	}
	if item.Quantity > product.Stock {
		return fmt.Errorf("%w: product %d has %d left", ErrInsufficientStock, product.ID, product.Stock)
	}

	existing.Quantity = item.Quantity
	existing.Variant = item.Variant
	s.cartItems[item.ID] = existing
	*item = existing
	return nil
}

func (s *MemoryStore) DeleteCartItem(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cartItems[id]; !ok {
		return ErrNotFound
	}
	delete(s.cartItems, id)
	return nil
}

func (s *MemoryStore) ClearCart(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearCartLocked(userID)
	return nil
}

func (s *MemoryStore) clearCartLocked(userID uint) {
	for id, item := range s.cartItems {
		if item.UserID == userID {
			delete(s.cartItems, id)
		}
	}
}

// Orders

func (s *MemoryStore) orderWithItems(o models.Order) models.Order {
	items := []models.OrderItem{}
	for _, it := range s.orderItems {
		if it.OrderID == o.ID {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	o.Items = items
	return o
}

func (s *MemoryStore) PlaceOrder(_ context.Context, checkout Checkout) (*models.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if checkout.IdempotencyKey != "" {
		for _, o := range s.orders {
			if o.UserID == checkout.UserID && o.IdempotencyKey != nil && *o.IdempotencyKey == checkout.IdempotencyKey {
				order := s.orderWithItems(o)
				return &order, true, nil
			}
		}
	}

	cart := s.userCart(checkout.UserID)
	if len(cart) == 0 {
		return nil, false, ErrCartEmpty
	}

	products := make(map[uint]models.Product, len(cart))
	for _, id := range cartProductIDs(cart) {
		if p, ok := s.products[id]; ok {
			products[id] = p
		}
	}

	items, total, err := PriceLines(cart, products)
	if err != nil {
		return nil, false, err
	}

	now := time.Now()
	order := newPendingOrder(checkout, nil, total)
	order.ID = s.nextOrderID
	s.nextOrderID++
	order.CreatedAt = now
	order.UpdatedAt = now
	s.orders[order.ID] = order

	for _, item := range items {
		item.ID = s.nextOrderItemID
		s.nextOrderItemID++
		item.OrderID = order.ID
		s.orderItems[item.ID] = item

		p := s.products[item.ProductID]
		p.Stock -= item.Quantity
		s.products[p.ID] = p
	}

	s.clearCartLocked(checkout.UserID)

	placed := s.orderWithItems(order)
	return &placed, false, nil
}

func (s *MemoryStore) ListOrders(_ context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Order{}
	for _, o := range s.orders {
		if filter.UserID != 0 && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool {
		if filter.Ascending {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].ID > matched[j].ID
	})

	count := int64(len(matched))
	start := filter.offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	res := make([]models.Order, 0, end-start)
	for _, o := range matched[start:end] {
		res = append(res, s.orderWithItems(o))
	}
	return res, count, nil
}

func (s *MemoryStore) GetOrder(_ context.Context, id uint) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	order := s.orderWithItems(o)
	return &order, nil
}

func (s *MemoryStore) UpdateOrderStatus(_ context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if o.Status == status {
		order := s.orderWithItems(o)
		return &order, nil
	}
	if !o.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}

	if status == models.OrderStatusCancelled {
		for _, it := range s.orderItems {
			if it.OrderID != id {
				continue
			}
			if p, ok := s.products[it.ProductID]; ok {
				p.Stock += it.Quantity
				s.products[p.ID] = p
			}
		}
	}

	o.Status = status
	o.UpdatedAt = time.Now()
	s.orders[id] = o

	order := s.orderWithItems(o)
	return &order, nil
}

func (s *MemoryStore) UpdatePaymentStatus(_ context.Context, id uint, status models.PaymentStatus, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentStatus = status
	if reference != "" {
		o.PaymentReference = reference
	}
	o.UpdatedAt = time.Now()
	s.orders[id] = o
	return nil
}
