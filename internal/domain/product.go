package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductActive ProductStatus = "active"
	ProductHidden ProductStatus = "hidden"
)

func (s ProductStatus) Valid() bool {
	return s == ProductActive || s == ProductHidden
}

type Product struct {
	ID          int64           `json:"id"`
	SellerID    int64           `json:"seller_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImagePath   string          `json:"image_path,omitempty"`
	Status      ProductStatus   `json:"status"`
	Moderated   bool            `json:"moderated"` // hidden by an admin
	ViewCount   int64           `json:"view_count"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Joined from seller_profiles / reviews for listings.
	ShopName     string  `json:"shop_name,omitempty"`
	SellerSlug   string  `json:"seller_slug,omitempty"`
	City         string  `json:"city,omitempty"`
	WhatsApp     string  `json:"-"`
	AvgRating    float64 `json:"avg_rating"`
	ReviewsCount int     `json:"reviews_count"`
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

// Category is one of the fixed marketplace categories.
type Category struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

var Categories = []Category{
	{Slug: "meals", Label: "Meals"},
	{Slug: "snacks", Label: "Snacks"},
	{Slug: "cakes", Label: "Cakes & pastries"},
	{Slug: "drinks", Label: "Drinks"},
	{Slug: "frozen", Label: "Frozen food"},
	{Slug: "spices", Label: "Spices & sauces"},
	{Slug: "produce", Label: "Fresh produce"},
	{Slug: "other", Label: "Other"},
}

func IsCategory(slug string) bool {
	for _, c := range Categories {
		if c.Slug == slug {
			return true
		}
	}
	return false
}

func CategoryLabel(slug string) string {
	for _, c := range Categories {
		if c.Slug == slug {
			return c.Label
		}
	}
	return slug
}
