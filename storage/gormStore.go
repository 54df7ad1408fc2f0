package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kariqs/camiu-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists to MySQL or Postgres through gorm. The *gorm.DB must be
// opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var lockForUpdate = clause.Locking{Strength: "UPDATE"}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// Users

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ? OR email = ?", login, models.NormalizeEmail(login)).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	return nil
}

// Categories

func (s *GormStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *GormStore) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (s *GormStore) CreateCategory(ctx context.Context, category *models.Category) error {
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", translate(err))
	}
	return nil
}

func (s *GormStore) UpdateCategory(ctx context.Context, category *models.Category) error {
	result := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ?", category.ID).
		Select("name", "description", "image").
		Updates(category)
	if result.Error != nil {
		return fmt.Errorf("update category %d: %w", category.ID, translate(result.Error))
	}
	if result.RowsAffected == 0 {
		if _, err := s.GetCategory(ctx, category.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *GormStore) DeleteCategory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Clauses(lockForUpdate).First(&category, id).Error; err != nil {
			return translate(err)
		}

		var count int64
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("count products of category %d: %w", id, err)
		}
		if count > 0 {
			return fmt.Errorf("%w: category %d has %d products", ErrConflict, id, count)
		}

		result := tx.Delete(&models.Category{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete category %d: %w", id, translate(result.Error))
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Products

func (s *GormStore) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})

	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Featured {
		query = query.Where("featured = ?", true)
	}
	if filter.New {
		query = query.Where(clause.Eq{Column: clause.Column{Name: "new"}, Value: true})
	}
	if filter.Bestseller {
		query = query.Where("bestseller = ?", true)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}

	var products []models.Product
	if err := query.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *GormStore) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// categoryExists locks the category row so a concurrent DeleteCategory
// cannot remove it before the product write commits.
func (s *GormStore) categoryExists(tx *gorm.DB, id uint) error {
	var category models.Category
	err := tx.Clauses(lockForUpdate).Select("id").First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: category %d does not exist", ErrInvalidInput, id)
	}
	if err != nil {
		return fmt.Errorf("check category %d: %w", id, err)
	}
	return nil
}

func (s *GormStore) CreateProduct(ctx context.Context, product *models.Product) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.categoryExists(tx, product.CategoryID); err != nil {
			return err
		}
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("create product: %w", translate(err))
		}
		return nil
	})
}

// modifyProduct loads the product FOR UPDATE, lets change edit it and
// writes back the given columns, all in one transaction.
func (s *GormStore) modifyProduct(ctx context.Context, id uint, columns []string, change func(tx *gorm.DB, p *models.Product) error) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(lockForUpdate).First(&product, id).Error; err != nil {
			return translate(err)
		}
		if err := change(tx, &product); err != nil {
			return err
		}
		if err := tx.Model(&product).Select(columns).Updates(&product).Error; err != nil {
			return fmt.Errorf("update product %d: %w", id, translate(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *GormStore) UpdateProduct(ctx context.Context, id uint, patch models.ProductPatch) (*models.Product, error) {
	columns := []string{"name", "description", "price", "sale_price", "image", "images",
		"category_id", "stock", "featured", "new", "bestseller"}
	return s.modifyProduct(ctx, id, columns, func(tx *gorm.DB, p *models.Product) error {
		patch.Apply(p)
		if patch.CategoryID != nil {
			return s.categoryExists(tx, p.CategoryID)
		}
		return nil
	})
}

func (s *GormStore) AddProductImages(ctx context.Context, id uint, urls []string) (*models.Product, error) {
	return s.modifyProduct(ctx, id, []string{"image", "images"}, func(_ *gorm.DB, p *models.Product) error {
		p.AddImages(urls)
		return nil
	})
}

func (s *GormStore) DeleteProduct(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("remove product %d from carts: %w", id, err)
		}

		result := tx.Delete(&models.Product{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete product %d: %w", id, translate(result.Error))
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Reviews

func (s *GormStore) ListReviews(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews of product %d: %w", productID, err)
	}
	return reviews, nil
}

func (s *GormStore) CreateReview(ctx context.Context, review *models.Review) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", review.ProductID).Count(&count).Error; err != nil {
			return fmt.Errorf("check product %d: %w", review.ProductID, err)
		}
		if count == 0 {
			return fmt.Errorf("%w: product %d", ErrNotFound, review.ProductID)
		}
		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("create review: %w", translate(err))
		}
		return nil
	})
}

// Cart

func (s *GormStore) ListCartItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list cart of user %d: %w", userID, err)
	}
	return items, nil
}

func (s *GormStore) GetCartItem(ctx context.Context, id uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (s *GormStore) AddToCart(ctx context.Context, item models.CartItem) (*models.CartItem, error) {
	var stored models.CartItem

	add := func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(lockForUpdate).First(&product, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", ErrNotFound, item.ProductID)
			}
			return fmt.Errorf("load product %d: %w", item.ProductID, err)
		}

		var existing models.CartItem
		err := tx.Clauses(lockForUpdate).
			Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
			First(&existing).Error

		switch {
		case err == nil:
			existing.Quantity += item.Quantity
			if item.Variant != nil {
				existing.Variant = item.Variant
			}
			if existing.Quantity > product.Stock {
				return fmt.Errorf("%w: product %d has %d left", ErrInsufficientStock, product.ID, product.Stock)
			}
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("update cart item %d: %w", existing.ID, err)
			}
			stored = existing
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("load cart item: %w", err)
		}

		if item.Quantity > product.Stock {
			return fmt.Errorf("%w: product %d has %d left", ErrInsufficientStock, product.ID, product.Stock)
		}
		stored = item
		if err := tx.Create(&stored).Error; err != nil {
			return translate(err)
		}
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(add)
	if errors.Is(err, ErrDuplicate) {
		// Lost the insert race against a concurrent add of the same product;
		// the row exists now, so the second attempt takes the update branch.
		err = s.db.WithContext(ctx).Transaction(add)
	}
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *GormStore) UpdateCartItem(ctx context.Context, item *models.CartItem) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.CartItem
		if err := tx.Clauses(lockForUpdate).First(&existing, item.ID).Error; err != nil {
			return translate(err)
		}

		var product models.Product
		if err := tx.First(&product, existing.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", ErrProductUnavailable, existing.ProductID)
			}
			return err
		}
		if item.Quantity > product.Stock {
			return fmt.Errorf("%w: product %d has %d left", ErrInsufficientStock, product.ID, product.Stock)
		}

		existing.Quantity = item.Quantity
		existing.Variant = item.Variant
		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("update cart item %d: %w", existing.ID, err)
		}
		*item = existing
		return nil
	})
}

func (s *GormStore) DeleteCartItem(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.CartItem{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete cart item %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ClearCart(ctx context.Context, userID uint) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("clear cart of user %d: %w", userID, err)
	}
	return nil
}

// Orders

func (s *GormStore) PlaceOrder(ctx context.Context, checkout Checkout) (*models.Order, bool, error) {
	var (
		order    models.Order
		replayed bool
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locking the cart rows first serializes concurrent checkouts of the
		// same cart: the loser wakes up to an empty cart.
		var cart []models.CartItem
		if err := tx.Clauses(lockForUpdate).Where("user_id = ?", checkout.UserID).Order("id").Find(&cart).Error; err != nil {
			return fmt.Errorf("lock cart of user %d: %w", checkout.UserID, err)
		}

		if checkout.IdempotencyKey != "" {
			err := tx.Preload("Items").
				Where("user_id = ? AND idempotency_key = ?", checkout.UserID, checkout.IdempotencyKey).
				First(&order).Error
			if err == nil {
				replayed = true
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("lookup idempotency key: %w", err)
			}
		}

		if len(cart) == 0 {
			return ErrCartEmpty
		}

		var products []models.Product
		if err := tx.Clauses(lockForUpdate).Where("id IN ?", cartProductIDs(cart)).Order("id").Find(&products).Error; err != nil {
			return fmt.Errorf("lock products: %w", err)
		}
		byID := make(map[uint]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		items, total, err := PriceLines(cart, byID)
		if err != nil {
			return err
		}

		order = newPendingOrder(checkout, items, total)
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", translate(err))
		}

		for _, item := range order.Items {
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return fmt.Errorf("decrement stock of product %d: %w", item.ProductID, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: product %d", ErrInsufficientStock, item.ProductID)
			}
		}

		if err := tx.Where("user_id = ?", checkout.UserID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart of user %d: %w", checkout.UserID, err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &order, replayed, nil
}

func (s *GormStore) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	sortOrder := "id DESC"
	if filter.Ascending {
		sortOrder = "id ASC"
	}
	query = query.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).Order(sortOrder)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.offset())
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, count, nil
}

func (s *GormStore) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *GormStore) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(lockForUpdate).Preload("Items").First(&order, id).Error; err != nil {
			return translate(err)
		}
		if order.Status == status {
			return nil
		}
		if !order.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
		}

		if status == models.OrderStatusCancelled {
			for _, item := range order.Items {
				err := tx.Model(&models.Product{}).
					Where("id = ?", item.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
				if err != nil {
					return fmt.Errorf("restock product %d: %w", item.ProductID, err)
				}
			}
		}

		if err := tx.Model(&order).Update("status", status).Error; err != nil {
			return fmt.Errorf("update order %d status: %w", id, err)
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *GormStore) UpdatePaymentStatus(ctx context.Context, id uint, status models.PaymentStatus, reference string) error {
	updates := map[string]any{"payment_status": status}
	if reference != "" {
		updates["payment_reference"] = reference
	}

	result := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update order %d payment: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
