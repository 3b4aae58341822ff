package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

const AggregateType = "Cart"

var (
	ErrInvalidProduct = errors.New("product_id is required")
	ErrUnknownEvent   = errors.New("unknown cart event")
)

type LineItem struct {
	ProductID     string    `json:"product_id"`
	Name          string    `json:"name"`
	Quantity      int       `json:"quantity"`
	UnitPrice     int       `json:"unit_price"`
	OriginalPrice int       `json:"original_price"`
	AddedAt       time.Time `json:"added_at"`
}

func (li LineItem) LineTotal() int {
	return li.UnitPrice * li.Quantity
}

// Cart is an immutable value: every method that changes it returns a new
// Cart with its own Items slice. Items keep insertion order.
type Cart struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Items     []LineItem `json:"items"`
	Version   int        `json:"version"`
}

// GetCartID returns the cart ID for a browsing session
func GetCartID(sessionID string) string {
	return "cart-" + sessionID
}

// SessionIDOf reverses GetCartID.
func SessionIDOf(cartID string) string {
	return strings.TrimPrefix(cartID, "cart-")
}

func New(sessionID string) Cart {
	return Cart{ID: GetCartID(sessionID), SessionID: sessionID, Items: []LineItem{}}
}

// MaxQuantity caps a single line.
const MaxQuantity = 99

// ClampQuantity is the single place quantities are made valid.
func ClampQuantity(q int) int {
	return min(max(q, 1), MaxQuantity)
}

// NewLineItem snapshots p's prices at time now.
func NewLineItem(p product.Product, quantity int, now time.Time) LineItem {
	return LineItem{
		ProductID:     p.ID,
		Name:          p.Name,
		Quantity:      ClampQuantity(quantity),
		UnitPrice:     p.EffectivePrice(),
		OriginalPrice: p.Price,
		AddedAt:       now,
	}
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) Find(productID string) (LineItem, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

func (c Cart) Clone() Cart {
	c.Items = slices.Clone(c.Items)
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	return c
}

// WithItem appends item, or increments the quantity of the existing line
// for the same product, saturating at MaxQuantity. An existing line keeps
// its original price snapshot.
func (c Cart) WithItem(item LineItem) Cart {
	next := c.Clone()
	item.Quantity = ClampQuantity(item.Quantity)
	if i := next.indexOf(item.ProductID); i >= 0 {
		next.Items[i].Quantity = ClampQuantity(next.Items[i].Quantity + item.Quantity)
		return next
	}
	next.Items = append(next.Items, item)
	return next
}

// WithQuantity sets the quantity of a line, clamped to at least 1. It
// reports false and returns c unchanged when the product is not in the cart.
func (c Cart) WithQuantity(productID string, quantity int) (Cart, bool) {
	i := c.indexOf(productID)
	if i < 0 {
		return c, false
	}
	next := c.Clone()
	next.Items[i].Quantity = ClampQuantity(quantity)
	return next, true
}

// Without drops the line for productID, reporting whether it was present.
func (c Cart) Without(productID string) (Cart, bool) {
	i := c.indexOf(productID)
	if i < 0 {
		return c, false
	}
	next := c.Clone()
	next.Items = slices.Delete(next.Items, i, i+1)
	return next, true
}

func (c Cart) Cleared() Cart {
	c.Items = []LineItem{}
	return c
}

func (c Cart) indexOf(productID string) int {
	return slices.IndexFunc(c.Items, func(li LineItem) bool {
		return li.ProductID == productID
	})
}

// Apply returns the cart with event applied. Wishlist events touch only the
// cart half of the session (the moved line is removed).
func Apply(c Cart, event store.Event) (Cart, error) {
	var next Cart
	switch event.EventType {
	case EventItemAdded:
		var data ItemAddedToCart
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return c, err
		}
		next = c.WithItem(LineItem{
			ProductID:     data.ProductID,
			Name:          data.Name,
			Quantity:      data.Quantity,
			UnitPrice:     data.UnitPrice,
			OriginalPrice: data.OriginalPrice,
			AddedAt:       data.AddedAt,
		})
		next.ID = data.CartID
		next.SessionID = data.SessionID
	case EventQuantityUpdated:
		var data ItemQuantityUpdated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return c, err
		}
		next, _ = c.WithQuantity(data.ProductID, data.Quantity)
	case EventItemRemoved:
		var data ItemRemovedFromCart
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return c, err
		}
		next, _ = c.Without(data.ProductID)
	case EventItemMovedToWishlist:
		var data ItemMovedToWishlist
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return c, err
		}
		next, _ = c.Without(data.ProductID)
	case EventWishlistItemRemoved:
		next = c
	case EventCartCleared:
		next = c.Cleared()
	default:
		return c, fmt.Errorf("%w: %s", ErrUnknownEvent, event.EventType)
	}
	next.Version = event.Version
	return next, nil
}
