package query

import (
	"context"

	"github.com/example/ec-storefront/internal/catalog"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/readmodel"
	"github.com/example/ec-storefront/internal/session"
	"go.uber.org/zap"
)

// Catalog is the read side of catalog.Service.
type Catalog interface {
	Products() []product.Product
	Status() catalog.Status
	Lookup(id string) (product.Product, bool)
}

// ProductList is one page of catalog results. Loading and Failed mirror the
// catalog load state so an empty list can be told apart from no matches.
type ProductList struct {
	Products []product.Product `json:"products"`
	Total    int               `json:"total"`
	Criteria catalog.Criteria  `json:"criteria"`
	Sort     catalog.SortKey   `json:"sort"`
	Loading  bool              `json:"loading"`
	Failed   bool              `json:"failed"`
}

type Handler struct {
	catalog   Catalog
	sessions  *session.Registry
	readStore store.ReadStoreInterface
	logger    *zap.Logger
}

func NewHandler(catalog Catalog, sessions *session.Registry, readStore store.ReadStoreInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalog:   catalog,
		sessions:  sessions,
		readStore: readStore,
		logger:    logger.Named("query"),
	}
}

// Products

// ListProducts runs the catalog through the session's current criteria.
func (h *Handler) ListProducts(ctx context.Context, sessionID, sort string) (ProductList, error) {
	s, err := h.sessions.Open(ctx, sessionID)
	if err != nil {
		return ProductList{}, err
	}
	return h.SearchProducts(s.Criteria(), sort), nil
}

// SearchProducts runs the catalog through criteria without touching any
// session.
func (h *Handler) SearchProducts(criteria catalog.Criteria, sort string) ProductList {
	key := catalog.ParseSortKey(sort)
	status := h.catalog.Status()
	products := catalog.FilterAndSort(h.catalog.Products(), criteria, key)
	return ProductList{
		Products: products,
		Total:    len(products),
		Criteria: criteria,
		Sort:     key,
		Loading:  status.Loading,
		Failed:   status.Failed,
	}
}

func (h *Handler) GetProduct(id string) (product.Product, bool) {
	return h.catalog.Lookup(id)
}

func (h *Handler) CatalogStatus() catalog.Status {
	return h.catalog.Status()
}

func (h *Handler) Facets() catalog.FacetSummary {
	return catalog.Facets(h.catalog.Products())
}

// Session state

// GetCart returns the live session view, including its criteria and totals.
func (h *Handler) GetCart(ctx context.Context, sessionID string) (session.Snapshot, error) {
	s, err := h.sessions.Open(ctx, sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return s.Snapshot(), nil
}

// GetWishlist resolves the session's wishlist against the catalog, in the
// order items were added. IDs no longer in the catalog are skipped.
func (h *Handler) GetWishlist(ctx context.Context, sessionID string) ([]product.Product, error) {
	s, err := h.sessions.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ids := s.Snapshot().Wishlist.ProductIDs
	products := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := h.catalog.Lookup(id); ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// Projected carts

// GetProjectedCart reads a cart from the read store. Sessions without cart
// events get an empty model.
func (h *Handler) GetProjectedCart(ctx context.Context, sessionID string) (*readmodel.CartReadModel, error) {
	cartID := cart.GetCartID(sessionID)
	data, ok, err := h.readStore.Get(ctx, readmodel.CollectionCarts, cartID)
	if err != nil {
		h.logger.Error("failed to get cart", zap.String("cart_id", cartID), zap.Error(err))
		return nil, err
	}
	if !ok {
		return readmodel.EmptyCart(sessionID), nil
	}
	return data.(*readmodel.CartReadModel), nil
}

// ListCarts returns every projected cart (for admin use)
func (h *Handler) ListCarts(ctx context.Context) ([]*readmodel.CartReadModel, error) {
	items, err := h.readStore.GetAll(ctx, readmodel.CollectionCarts)
	if err != nil {
		h.logger.Error("failed to list carts", zap.Error(err))
		return nil, err
	}
	carts := make([]*readmodel.CartReadModel, 0, len(items))
	for _, item := range items {
		carts = append(carts, item.(*readmodel.CartReadModel))
	}
	return carts, nil
}
