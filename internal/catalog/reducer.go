package catalog

import "slices"

// Change updates one filter dimension. It receives a private copy.
type Change func(Criteria) Criteria

// Reduce applies change to prev. If the result does not validate, prev is
// returned unchanged along with ErrInvalidCriteria.
func Reduce(prev Criteria, change Change) (Criteria, error) {
	if change == nil {
		return prev.clone(), nil
	}
	next, err := NewCriteria(change(prev.clone()))
	if err != nil {
		return prev, err
	}
	return next, nil
}

// Reset restores the default criteria, keeping the configured ceiling.
func Reset(prev Criteria) Criteria {
	return DefaultCriteria(prev.PriceCeiling)
}

func SetSearch(search string) Change {
	return func(c Criteria) Criteria {
		c.Search = search
		return c
	}
}

func SetCategories(categories ...string) Change {
	return func(c Criteria) Criteria {
		c.Categories = slices.Clone(categories)
		return c
	}
}

// ToggleCategory adds category when absent and removes it when present.
// Categories compare case-insensitively, as they do when filtering.
func ToggleCategory(category string) Change {
	return func(c Criteria) Criteria {
		if i := categoryIndex(c.Categories, category); i >= 0 {
			c.Categories = slices.Delete(c.Categories, i, i+1)
			return c
		}
		c.Categories = append(c.Categories, category)
		return c
	}
}

func SetPriceRange(min, max int) Change {
	return func(c Criteria) Criteria {
		c.PriceRange = PriceRange{Min: min, Max: max}
		return c
	}
}

// SetMinPrice moves only the lower bound of the price range.
func SetMinPrice(min int) Change {
	return func(c Criteria) Criteria {
		c.PriceRange.Min = min
		return c
	}
}

func SetMaxPrice(max int) Change {
	return func(c Criteria) Criteria {
		c.PriceRange.Max = max
		return c
	}
}

func SetMinRating(rating float64) Change {
	return func(c Criteria) Criteria {
		c.MinRating = rating
		return c
	}
}

func SetInStockOnly(v bool) Change {
	return func(c Criteria) Criteria {
		c.InStockOnly = v
		return c
	}
}

func SetShowSaleItems(v bool) Change {
	return func(c Criteria) Criteria {
		c.ShowSaleItems = v
		return c
	}
}

// Chain applies changes left to right as a single change.
func Chain(changes ...Change) Change {
	return func(c Criteria) Criteria {
		for _, change := range changes {
			if change != nil {
				c = change(c)
			}
		}
		return c
	}
}
