package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func init() {
	// Prices go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Name        string                      `gorm:"size:255;not null" json:"name"`
	Description string                      `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal             `gorm:"type:decimal(10,2);not null" json:"price"`
	SalePrice   decimal.NullDecimal         `gorm:"type:decimal(10,2)" json:"salePrice"`
	Image       string                      `gorm:"not null" json:"image"`
	Images      datatypes.JSONSlice[string] `json:"images"`
	CategoryID  uint                        `gorm:"index;not null" json:"categoryId"`
	Stock       int                         `gorm:"not null;default:0" json:"stock"`
	Featured    bool                        `gorm:"index;not null;default:false" json:"featured"`
	New         bool                        `gorm:"index;not null;default:false" json:"new"`
	Bestseller  bool                        `gorm:"index;not null;default:false" json:"bestseller"`
	CreatedAt   time.Time                   `json:"createdAt"`
}

// EffectivePrice is the price a customer pays right now: the sale price when
// one is set and positive, the regular price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid && p.SalePrice.Decimal.IsPositive() {
		return p.SalePrice.Decimal
	}
	return p.Price
}

type NewProduct struct {
	Name        string              `json:"name" binding:"required,max=255"`
	Description string              `json:"description" binding:"required"`
	Price       decimal.Decimal     `json:"price" binding:"required,gt=0"`
	SalePrice   decimal.NullDecimal `json:"salePrice" binding:"omitempty,gte=0"`
	Image       string              `json:"image" binding:"required,url"`
	Images      []string            `json:"images" binding:"omitempty,dive,url"`
	CategoryID  uint                `json:"categoryId" binding:"required"`
	Stock       int                 `json:"stock" binding:"gte=0"`
	Featured    bool                `json:"featured"`
	New         bool                `json:"new"`
	Bestseller  bool                `json:"bestseller"`
}

func (n NewProduct) Product() Product {
	return Product{
		Name:        n.Name,
		Description: n.Description,
		Price:       n.Price,
		SalePrice:   n.SalePrice,
		Image:       n.Image,
		Images:      datatypes.JSONSlice[string](append([]string{}, n.Images...)),
		CategoryID:  n.CategoryID,
		Stock:       n.Stock,
		Featured:    n.Featured,
		New:         n.New,
		Bestseller:  n.Bestseller,
	}
}

// ProductPatch is a partial update; nil fields are left untouched. A JSON
// null salePrice cannot be told apart from an absent one, so clearing a sale
// is done with ClearSalePrice.
type ProductPatch struct {
	Name           *string              `json:"name" binding:"omitempty,min=1,max=255"`
	Description    *string              `json:"description" binding:"omitempty,min=1"`
	Price          *decimal.Decimal     `json:"price" binding:"omitempty,gt=0"`
	SalePrice      *decimal.NullDecimal `json:"salePrice" binding:"omitempty,gte=0"`
	ClearSalePrice bool                 `json:"clearSalePrice"`
	Image          *string              `json:"image" binding:"omitempty,url"`
	Images         *[]string            `json:"images" binding:"omitempty,dive,url"`
	CategoryID     *uint                `json:"categoryId" binding:"omitempty,min=1"`
	Stock          *int                 `json:"stock" binding:"omitempty,gte=0"`
	Featured       *bool                `json:"featured"`
	New            *bool                `json:"new"`
	Bestseller     *bool                `json:"bestseller"`
}

// AddImages appends urls to the gallery and uses the first one as the main
// image when none is set.
func (p *Product) AddImages(urls []string) {
	if len(urls) == 0 {
		return
	}
	p.Images = append(p.Images, urls...)
	if p.Image == "" {
		p.Image = urls[0]
	}
}

func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.SalePrice != nil {
		product.SalePrice = *p.SalePrice
	}
	if p.ClearSalePrice {
		product.SalePrice = decimal.NullDecimal{}
	}
	if p.Image != nil {
		product.Image = *p.Image
	}
	if p.Images != nil {
		product.Images = datatypes.JSONSlice[string](append([]string{}, (*p.Images)...))
	}
	if p.CategoryID != nil {
		product.CategoryID = *p.CategoryID
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if p.Featured != nil {
		product.Featured = *p.Featured
	}
	if p.New != nil {
		product.New = *p.New
	}
	if p.Bestseller != nil {
		product.Bestseller = *p.Bestseller
	}
}
