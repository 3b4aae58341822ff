package product

import (
	"errors"
	"math"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidName     = errors.New("name is required")
	ErrInvalidID       = errors.New("id is required")
	ErrInvalidRating   = errors.New("rating must be between 0 and 5")
	ErrOutOfStock      = errors.New("product is out of stock")
)

// Product is a catalog entry. The cart and query code only ever read it.
type Product struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Category    string   `json:"category" yaml:"category"`
	Brand       string   `json:"brand" yaml:"brand"`
	Price       int      `json:"price" yaml:"price"`
	SalePrice   *int     `json:"sale_price,omitempty" yaml:"sale_price"`
	Rating      float64  `json:"rating" yaml:"rating"`
	ReviewCount int      `json:"review_count" yaml:"review_count"`
	InStock     bool     `json:"in_stock" yaml:"in_stock"`
	IsNew       bool     `json:"is_new,omitempty" yaml:"is_new"`
	Tags        []string `json:"tags,omitempty" yaml:"tags"`
	ImageURL    string   `json:"image_url,omitempty" yaml:"image_url"`
}

// EffectivePrice is the sale price when present, otherwise the list price.
func (p Product) EffectivePrice() int {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

func (p Product) HasSale() bool {
	return p.SalePrice != nil
}

// DiscountPercent returns the whole-number percentage saved by the sale price.
func (p Product) DiscountPercent() int {
	if p.SalePrice == nil || p.Price <= 0 || *p.SalePrice >= p.Price {
		return 0
	}
	saved := float64(p.Price-*p.SalePrice) / float64(p.Price) * 100
	return int(math.Round(saved))
}

func (p Product) Validate() error {
	if p.ID == "" {
		return ErrInvalidID
	}
	if p.Name == "" {
		return ErrInvalidName
	}
	if p.Price < 0 || (p.SalePrice != nil && *p.SalePrice < 0) {
		return ErrInvalidPrice
	}
	if p.Rating < 0 || p.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

// PriceOf returns a pointer to v, for building sale prices inline.
func PriceOf(v int) *int {
	return &v
}
