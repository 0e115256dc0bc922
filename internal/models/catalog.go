package models

import (
	"time"

	"gorm.io/gorm"
)

type Category struct {
	ID   int    `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:200;not null"`
}

type Product struct {
	ID          int    `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:200;not null"`
	Description string `json:"description" gorm:"type:text"`
	CategoryID  int    `json:"category_id" gorm:"not null;index"`

	Category       *Category       `json:"category,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	SellerProducts []SellerProduct `json:"seller_products,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Reviews        []Review        `json:"reviews,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Images         []ProductImage  `json:"images,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// Navigation relations of Product, usable with repository.Include.
const (
	ProductCategory       = "Category"
	ProductSellerProducts = "SellerProducts"
	ProductReviews        = "Reviews"
	ProductImages         = "Images"
)

// ProductGraph is the full set of relations a product view needs.
var ProductGraph = []string{ProductCategory, ProductSellerProducts, ProductReviews, ProductImages}

type ProductImage struct {
	ID        int    `json:"id" gorm:"primaryKey"`
	URL       string `json:"url" gorm:"size:2048;not null"`
	ProductID int    `json:"product_id" gorm:"not null;index"`
}

type Seller struct {
	ID   int    `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:200;not null"`

	SellerProducts []SellerProduct `json:"seller_products,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

const SellerListings = "SellerProducts"

// SellerProduct is a seller's price listing for a product.
type SellerProduct struct {
	ID        int     `json:"id" gorm:"primaryKey"`
	SellerID  int     `json:"seller_id" gorm:"not null;index"`
	ProductID int     `json:"product_id" gorm:"not null;index"`
	Price     float64 `json:"price" gorm:"type:decimal(18,2);not null"`
}

// Review is soft-deleted: DeletedAt hides it from every query once set.
type Review struct {
	ID        int            `json:"id" gorm:"primaryKey"`
	Rating    int            `json:"rating" gorm:"not null"`
	Comment   string         `json:"comment" gorm:"type:text"`
	UserID    int            `json:"user_id" gorm:"not null;index:idx_reviews_product_user"`
	ProductID int            `json:"product_id" gorm:"not null;index:idx_reviews_product_user"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

const (
	MinRating = 1
	MaxRating = 5
)
