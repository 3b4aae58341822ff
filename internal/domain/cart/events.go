package cart

import "time"

const (
	EventItemAdded           = "ItemAddedToCart"
	EventQuantityUpdated     = "ItemQuantityUpdated"
	EventItemRemoved         = "ItemRemovedFromCart"
	EventItemMovedToWishlist = "ItemMovedToWishlist"
	EventWishlistItemRemoved = "WishlistItemRemoved"
	EventCartCleared         = "CartCleared"
)

// ItemAddedToCart carries the price snapshot taken when the shopper added
// the product.
type ItemAddedToCart struct {
	CartID        string    `json:"cart_id"`
	SessionID     string    `json:"session_id"`
	ProductID     string    `json:"product_id"`
	Name          string    `json:"name"`
	Quantity      int       `json:"quantity"`
	UnitPrice     int       `json:"unit_price"`
	OriginalPrice int       `json:"original_price"`
	AddedAt       time.Time `json:"added_at"`
}

type ItemQuantityUpdated struct {
	CartID    string    `json:"cart_id"`
	SessionID string    `json:"session_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ItemRemovedFromCart struct {
	CartID    string    `json:"cart_id"`
	SessionID string    `json:"session_id"`
	ProductID string    `json:"product_id"`
	RemovedAt time.Time `json:"removed_at"`
}

// ItemMovedToWishlist removes the line from the cart and adds the product to
// the wishlist in one step.
type ItemMovedToWishlist struct {
	CartID    string    `json:"cart_id"`
	SessionID string    `json:"session_id"`
	ProductID string    `json:"product_id"`
	MovedAt   time.Time `json:"moved_at"`
}

type WishlistItemRemoved struct {
	CartID    string    `json:"cart_id"`
	SessionID string    `json:"session_id"`
	ProductID string    `json:"product_id"`
	RemovedAt time.Time `json:"removed_at"`
}

type CartCleared struct {
	CartID    string    `json:"cart_id"`
	SessionID string    `json:"session_id"`
	ClearedAt time.Time `json:"cleared_at"`
}
