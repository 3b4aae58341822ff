package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/example/ec-storefront/internal/domain/product"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortName      SortKey = "name"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
)

// ParseSortKey maps s to a known key. Anything unrecognized sorts by name.
func ParseSortKey(s string) SortKey {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case SortName, SortPriceLow, SortPriceHigh, SortRating, SortNewest:
		return key
	}
	return SortName
}

// FilterAndSort returns the products matching every active predicate of c,
// ordered by key. Equal keys keep their input order. The input slice is
// never modified.
func FilterAndSort(products []product.Product, c Criteria, key SortKey) []product.Product {
	search := strings.ToLower(strings.TrimSpace(c.Search))

	result := make([]product.Product, 0, len(products))
	for _, p := range products {
		if matches(p, c, search) {
			result = append(result, p)
		}
	}

	slices.SortStableFunc(result, comparator(ParseSortKey(string(key))))
	return result
}

func matches(p product.Product, c Criteria, search string) bool {
	if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
		return false
	}
	if len(c.Categories) > 0 && !c.hasCategory(p.Category) {
		return false
	}
	price := p.EffectivePrice()
	if price < c.PriceRange.Min {
		return false
	}
	if !c.Unbounded() && price > c.PriceRange.Max {
		return false
	}
	if p.Rating < c.MinRating {
		return false
	}
	if c.InStockOnly && !p.InStock {
		return false
	}
	if c.ShowSaleItems && !p.HasSale() {
		return false
	}
	return true
}

func comparator(key SortKey) func(a, b product.Product) int {
	switch key {
	case SortPriceLow:
		return func(a, b product.Product) int {
			return cmp.Compare(a.EffectivePrice(), b.EffectivePrice())
		}
	case SortPriceHigh:
		return func(a, b product.Product) int {
			return cmp.Compare(b.EffectivePrice(), a.EffectivePrice())
		}
	case SortRating:
		return func(a, b product.Product) int {
			return cmp.Compare(b.Rating, a.Rating)
		}
	case SortNewest:
		return func(a, b product.Product) int {
			switch {
			case a.IsNew == b.IsNew:
				return 0
			case a.IsNew:
				return -1
			default:
				return 1
			}
		}
	}

	// A Collator keeps internal buffers, so each call gets its own.
	coll := collate.New(language.English, collate.IgnoreCase)
	return func(a, b product.Product) int {
		return coll.CompareString(a.Name, b.Name)
	}
}
