package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultPriceCeiling is the slider's rightmost value in minor units ($2,000).
const DefaultPriceCeiling = 200000

var ErrInvalidCriteria = errors.New("invalid filter criteria")

var validate = validator.New()

type PriceRange struct {
	Min int `json:"min" validate:"gte=0"`
	Max int `json:"max" validate:"gtefield=Min"`
}

// Criteria is the full set of active catalog filter dimensions. The zero
// value is not meaningful; start from DefaultCriteria or NewCriteria.
type Criteria struct {
	Search        string     `json:"search"`
	Categories    []string   `json:"categories"`
	PriceRange    PriceRange `json:"price_range"`
	PriceCeiling  int        `json:"price_ceiling" validate:"gt=0"`
	MinRating     float64    `json:"min_rating" validate:"gte=0,lte=5"`
	InStockOnly   bool       `json:"in_stock_only"`
	ShowSaleItems bool       `json:"show_sale_items"`
}

// DefaultCriteria returns criteria that filter nothing out.
func DefaultCriteria(ceiling int) Criteria {
	if ceiling <= 0 {
		ceiling = DefaultPriceCeiling
	}
	return Criteria{
		Categories:   []string{},
		PriceRange:   PriceRange{Min: 0, Max: ceiling},
		PriceCeiling: ceiling,
	}
}

// NewCriteria normalizes and validates c.
func NewCriteria(c Criteria) (Criteria, error) {
	c.Search = strings.TrimSpace(c.Search)
	c.Categories = normalizeCategories(c.Categories)
	if err := validate.Struct(c); err != nil {
		return Criteria{}, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	return c, nil
}

// Unbounded reports whether the upper price bound sits at the ceiling, in
// which case nothing is excluded for being too expensive.
func (c Criteria) Unbounded() bool {
	return c.PriceRange.Max >= c.PriceCeiling
}

func (c Criteria) IsDefault() bool {
	return c.Search == "" &&
		len(c.Categories) == 0 &&
		c.PriceRange.Min == 0 &&
		c.Unbounded() &&
		c.MinRating == 0 &&
		!c.InStockOnly &&
		!c.ShowSaleItems
}

func (c Criteria) hasCategory(category string) bool {
	return categoryIndex(c.Categories, category) >= 0
}

// categoryIndex finds category in categories, ignoring case and surrounding
// space.
func categoryIndex(categories []string, category string) int {
	category = strings.TrimSpace(category)
	return slices.IndexFunc(categories, func(have string) bool {
		return strings.EqualFold(strings.TrimSpace(have), category)
	})
}

func (c Criteria) clone() Criteria {
	c.Categories = slices.Clone(c.Categories)
	if c.Categories == nil {
		c.Categories = []string{}
	}
	return c
}

func normalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	for _, category := range in {
		category = strings.TrimSpace(category)
		if category == "" || categoryIndex(out, category) >= 0 {
			continue
		}
		out = append(out, category)
	}
	slices.Sort(out)
	return out
}
