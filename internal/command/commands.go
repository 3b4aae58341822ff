package command

// Cart Commands
type AddToCart struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantity struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type RemoveFromCart struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
}

type ClearCart struct {
	SessionID string `json:"session_id"`
}

// Wishlist Commands
type MoveToWishlist struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
}

type RemoveFromWishlist struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
}

// Filter Commands

// ChangeFilter carries the dimensions to change. Nil fields are left as
// they are.
type ChangeFilter struct {
	SessionID      string   `json:"session_id"`
	Search         *string  `json:"search,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	ToggleCategory string   `json:"toggle_category,omitempty"`
	MinPrice       *int     `json:"min_price,omitempty"`
	MaxPrice       *int     `json:"max_price,omitempty"`
	MinRating      *float64 `json:"min_rating,omitempty"`
	InStockOnly    *bool    `json:"in_stock_only,omitempty"`
	ShowSaleItems  *bool    `json:"show_sale_items,omitempty"`
}

type ResetFilters struct {
	SessionID string `json:"session_id"`
}
