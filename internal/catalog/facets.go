package catalog

import (
	"slices"
	"strings"

	"github.com/example/ec-storefront/internal/domain/product"
)

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FacetSummary feeds the filter sidebar: category counts, stock counts and
// the effective price span of the catalog.
type FacetSummary struct {
	Categories []CategoryCount `json:"categories"`
	InStock    int             `json:"in_stock"`
	OutOfStock int             `json:"out_of_stock"`
	OnSale     int             `json:"on_sale"`
	MinPrice   int             `json:"min_price"`
	MaxPrice   int             `json:"max_price"`
}

func Facets(products []product.Product) FacetSummary {
	summary := FacetSummary{Categories: []CategoryCount{}}
	counts := make(map[string]int)

	for i, p := range products {
		counts[p.Category]++
		if p.InStock {
			summary.InStock++
		} else {
			summary.OutOfStock++
		}
		if p.HasSale() {
			summary.OnSale++
		}
		price := p.EffectivePrice()
		if i == 0 || price < summary.MinPrice {
			summary.MinPrice = price
		}
		if price > summary.MaxPrice {
			summary.MaxPrice = price
		}
	}

	for name, count := range counts {
		summary.Categories = append(summary.Categories, CategoryCount{Name: name, Count: count})
	}
	slices.SortFunc(summary.Categories, func(a, b CategoryCount) int {
		return strings.Compare(a.Name, b.Name)
	})
	return summary
}
