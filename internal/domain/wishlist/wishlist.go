package wishlist

import "slices"

// Wishlist is an ordered set of product IDs. Like cart.Cart it is a value:
// Add and Remove return a new Wishlist.
type Wishlist struct {
	ProductIDs []string `json:"product_ids"`
}

func New() Wishlist {
	return Wishlist{ProductIDs: []string{}}
}

func (w Wishlist) Contains(productID string) bool {
	return slices.Contains(w.ProductIDs, productID)
}

func (w Wishlist) Len() int {
	return len(w.ProductIDs)
}

// Add appends productID unless it is already present.
func (w Wishlist) Add(productID string) Wishlist {
	if w.Contains(productID) {
		return w.Clone()
	}
	next := w.Clone()
	next.ProductIDs = append(next.ProductIDs, productID)
	return next
}

func (w Wishlist) Remove(productID string) (Wishlist, bool) {
	i := slices.Index(w.ProductIDs, productID)
	if i < 0 {
		return w, false
	}
	next := w.Clone()
	next.ProductIDs = slices.Delete(next.ProductIDs, i, i+1)
	return next, true
}

func (w Wishlist) Clone() Wishlist {
	ids := slices.Clone(w.ProductIDs)
	if ids == nil {
		ids = []string{}
	}
	return Wishlist{ProductIDs: ids}
}
