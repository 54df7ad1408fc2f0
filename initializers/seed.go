package initializers

import (
	"context"
	"fmt"
	"log"

	"github.com/Kariqs/camiu-api/models"
	"github.com/Kariqs/camiu-api/storage"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type sampleProduct struct {
	name, description string
	price, salePrice  string
	image             string
	category          int
	stock             int
	featured, isNew   bool
	bestseller        bool
}

var sampleCategories = []models.Category{
	{Name: "Skincare", Description: "Skincare products for all skin types", Image: "https://images.unsplash.com/photo-1567721913486-6585f069b332?auto=format&fit=crop&w=400&h=400"},
	{Name: "Makeup", Description: "Makeup products for all occasions", Image: "https://images.unsplash.com/photo-1596462502278-27bfdc403348?auto=format&fit=crop&w=400&h=400"},
	{Name: "Hair Care", Description: "Hair care products for all hair types", Image: "https://images.unsplash.com/photo-1599751449028-36357617369e?auto=format&fit=crop&w=400&h=400"},
	{Name: "Fragrances", Description: "Fragrances for all occasions", Image: "https://images.unsplash.com/photo-1600612253971-422e7f7faeb6?auto=format&fit=crop&w=400&h=400"},
}

var sampleProducts = []sampleProduct{
	{"Hydrating Facial Cream", "A deeply hydrating face cream enriched with hyaluronic acid and botanical extracts.",
		"39.99", "29.99", "https://images.unsplash.com/photo-1586495777744-4413f21062fa", 0, 100, true, true, false},
	{"Vitamin C Brightening Serum", "A vitamin C serum that brightens and evens skin tone.",
		"44.99", "35.99", "https://images.unsplash.com/photo-1617897903246-719242758050", 0, 80, true, false, false},
	{"Longwear Matte Foundation", "A long-lasting full coverage foundation with a matte finish.",
		"24.99", "", "https://images.unsplash.com/photo-1599305445671-ac291c95aaa9", 1, 120, true, false, false},
	{"Creamy Matte Lipstick Set", "A set of creamy matte lipsticks in various shades.",
		"52.99", "42.99", "https://images.unsplash.com/photo-1571875257727-256c39da42af", 1, 60, true, false, true},
	{"Floral Essence Perfume", "A floral fragrance with notes of jasmine, rose and vanilla.",
		"68.99", "", "https://images.unsplash.com/photo-1615375834706-05eb4f78d58e", 3, 40, true, false, false},
	{"Hyaluronic Acid Sheet Mask Set", "Sheet masks with hyaluronic acid for deep hydration.",
		"27.99", "22.99", "https://images.unsplash.com/photo-1631730359585-38a4935786ad", 0, 90, true, false, true},
}

// SeedSampleData fills an empty catalog with demo categories, products and an
// admin account (admin / admin123). A store that already has categories is left alone.
func SeedSampleData(ctx context.Context, store storage.Storage) error {
	existing, err := store.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Println("Sample data already initialized, skipping.")
		return nil
	}

	log.Println("Initializing sample data...")

	categoryIDs := make([]uint, 0, len(sampleCategories))
	for _, c := range sampleCategories {
		category := c
		if err := store.CreateCategory(ctx, &category); err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
		categoryIDs = append(categoryIDs, category.ID)
	}

	for _, p := range sampleProducts {
		product := models.Product{
			Name:        p.name,
			Description: p.description,
			Price:       decimal.RequireFromString(p.price),
			Image:       p.image + "?auto=format&fit=crop&w=400&h=400",
			Images:      datatypes.JSONSlice[string]{p.image + "?auto=format&fit=crop&w=800&h=800"},
			CategoryID:  categoryIDs[p.category],
			Stock:       p.stock,
			Featured:    p.featured,
			New:         p.isNew,
			Bestseller:  p.bestseller,
		}
		if p.salePrice != "" {
			product.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString(p.salePrice))
		}
		if err := store.CreateProduct(ctx, &product); err != nil {
			return fmt.Errorf("seed product %s: %w", p.name, err)
		}
	}

	hashed, err := models.HashPassword("admin123")
	if err != nil {
		return err
	}
	admin := &models.User{Username: "admin", Email: "admin@camiu.com", Password: hashed, IsAdmin: true}
	if err := store.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
