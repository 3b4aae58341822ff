package readmodel

import (
	"time"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/wishlist"
)

// CollectionCarts is the read store collection holding *CartReadModel.
const CollectionCarts = "carts"

// CartItemReadModel represents an item in the cart
type CartItemReadModel struct {
	ProductID     string    `json:"product_id"`
	Name          string    `json:"name"`
	Quantity      int       `json:"quantity"`
	UnitPrice     int       `json:"unit_price"`
	OriginalPrice int       `json:"original_price"`
	LineTotal     int       `json:"line_total"`
	AddedAt       time.Time `json:"added_at"`
}

// CartReadModel is the projected view of a session's cart and wishlist
type CartReadModel struct {
	ID        string              `json:"id"`
	SessionID string              `json:"session_id"`
	Items     []CartItemReadModel `json:"items"`
	Wishlist  []string            `json:"wishlist"`
	Totals    cart.Totals         `json:"totals"`
	Version   int                 `json:"version"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func NewCartReadModel(c cart.Cart, w wishlist.Wishlist, totals cart.Totals, updatedAt time.Time) *CartReadModel {
	items := make([]CartItemReadModel, 0, len(c.Items))
	for _, li := range c.Items {
		items = append(items, CartItemReadModel{
			ProductID:     li.ProductID,
			Name:          li.Name,
			Quantity:      li.Quantity,
			UnitPrice:     li.UnitPrice,
			OriginalPrice: li.OriginalPrice,
			LineTotal:     li.LineTotal(),
			AddedAt:       li.AddedAt,
		})
	}
	return &CartReadModel{
		ID:        c.ID,
		SessionID: c.SessionID,
		Items:     items,
		Wishlist:  w.Clone().ProductIDs,
		Totals:    totals,
		Version:   c.Version,
		UpdatedAt: updatedAt,
	}
}

// EmptyCart is the read model of a session that has no cart events yet.
func EmptyCart(sessionID string) *CartReadModel {
	return &CartReadModel{
		ID:        cart.GetCartID(sessionID),
		SessionID: sessionID,
		Items:     []CartItemReadModel{},
		Wishlist:  []string{},
	}
}

// Cart converts the read model back into a cart value.
func (m *CartReadModel) Cart() cart.Cart {
	c := cart.Cart{ID: m.ID, SessionID: m.SessionID, Items: make([]cart.LineItem, 0, len(m.Items)), Version: m.Version}
	for _, item := range m.Items {
		c.Items = append(c.Items, cart.LineItem{
			ProductID:     item.ProductID,
			Name:          item.Name,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			OriginalPrice: item.OriginalPrice,
			AddedAt:       item.AddedAt,
		})
	}
	return c
}

func (m *CartReadModel) WishlistValue() wishlist.Wishlist {
	return wishlist.Wishlist{ProductIDs: m.Wishlist}.Clone()
}
