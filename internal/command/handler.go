package command

import (
	"context"

	"github.com/example/ec-storefront/internal/catalog"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/session"
)

// ProductLookup resolves catalog products by ID. *catalog.Service satisfies it.
type ProductLookup interface {
	Lookup(id string) (product.Product, bool)
}

type Handler struct {
	products ProductLookup
	sessions *session.Registry
}

func NewHandler(products ProductLookup, sessions *session.Registry) *Handler {
	return &Handler{
		products: products,
		sessions: sessions,
	}
}

// StartSession opens a new anonymous session with an empty cart.
func (h *Handler) StartSession(ctx context.Context) (session.Snapshot, error) {
	s, err := h.sessions.New(ctx)
	if err != nil {
		return session.Snapshot{}, err
	}
	return s.Snapshot(), nil
}

// AddToCart adds an item to the session's cart at the catalog's current price
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) (session.Snapshot, error) {
	p, ok := h.products.Lookup(cmd.ProductID)
	if !ok {
		return session.Snapshot{}, product.ErrProductNotFound
	}
	if !p.InStock {
		return session.Snapshot{}, product.ErrOutOfStock
	}

	s, err := h.sessions.Open(ctx, cmd.SessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return s.AddToCart(ctx, p, cmd.Quantity)
}

func (h *Handler) UpdateQuantity(ctx context.Context, cmd UpdateQuantity) (session.Snapshot, error) {
	s, err := h.sessions.Open(ctx, cmd.SessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return s.UpdateQuantity(ctx, cmd.ProductID, cmd.Quantity)
}

func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) (session.Snapshot, error) {
	s, err := h.sessions.Open(ctx, cmd.SessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return s.RemoveFromCart(ctx, cmd.ProductID)
}

// ClearCart clears all items from cart
func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) (session.Snapshot, error) {
	s, err := h.sessions.Open(ctx, cmd.SessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return s.ClearCart(ctx)
}

// MoveToWishlist moves a cart line to the wishlist. Products that are not in
// the cart are added to the wishlist directly.
func (h *Handler) MoveToWishlist(ctx context.Context, cmd MoveToWishlist) (session.Snapshot, error) {
	if _, ok := h.products.Lookup(cmd.ProductID); !ok {
		return session.Snapshot{}, product.ErrProductNotFound
	}
	s, err := h.sessions.Open(ctx, cmd.SessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return s.MoveToWishlist(ctx, cmd.ProductID)
}

func (h *Handler) RemoveFromWishlist(ctx context.Context, cmd RemoveFromWishlist) (session.Snapshot, error) {
	s, err := h.sessions.Open(ctx, cmd.SessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return s.RemoveFromWishlist(ctx, cmd.ProductID)
}

// ChangeFilter applies every set field of cmd as one reduction, so either
// all of them take effect or none do.
func (h *Handler) ChangeFilter(ctx context.Context, cmd ChangeFilter) (session.Snapshot, error) {
	s, err := h.sessions.Open(ctx, cmd.SessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return s.ApplyFilter(cmd.change())
}

func (h *Handler) ResetFilters(ctx context.Context, cmd ResetFilters) (session.Snapshot, error) {
	s, err := h.sessions.Open(ctx, cmd.SessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return s.ResetFilters(), nil
}

func (cmd ChangeFilter) change() catalog.Change {
	var changes []catalog.Change
	if cmd.Search != nil {
		changes = append(changes, catalog.SetSearch(*cmd.Search))
	}
	if cmd.Categories != nil {
		changes = append(changes, catalog.SetCategories(cmd.Categories...))
	}
	if cmd.ToggleCategory != "" {
		changes = append(changes, catalog.ToggleCategory(cmd.ToggleCategory))
	}
	if cmd.MinPrice != nil {
		changes = append(changes, catalog.SetMinPrice(*cmd.MinPrice))
	}
	if cmd.MaxPrice != nil {
		changes = append(changes, catalog.SetMaxPrice(*cmd.MaxPrice))
	}
	if cmd.MinRating != nil {
		changes = append(changes, catalog.SetMinRating(*cmd.MinRating))
	}
	if cmd.InStockOnly != nil {
		changes = append(changes, catalog.SetInStockOnly(*cmd.InStockOnly))
	}
	if cmd.ShowSaleItems != nil {
		changes = append(changes, catalog.SetShowSaleItems(*cmd.ShowSaleItems))
	}
	return catalog.Chain(changes...)
}
