package query

import (
	"context"
	"errors"
	"testing"

	"github.com/example/ec-storefront/internal/catalog"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/example/ec-storefront/internal/readmodel"
	"github.com/example/ec-storefront/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	products []product.Product
	status   catalog.Status
}

func (f *fakeCatalog) Products() []product.Product { return f.products }
func (f *fakeCatalog) Status() catalog.Status      { return f.status }

func (f *fakeCatalog) Lookup(id string) (product.Product, bool) {
	for _, p := range f.products {
		if p.ID == id {
			return p, true
		}
	}
	return product.Product{}, false
}

var testProducts = []product.Product{
	{ID: "iphone", Name: "iPhone 15", Category: "Phones", Price: 119900, Rating: 4.9, InStock: true},
	{ID: "redmi", Name: "Redmi Note", Category: "Phones", Price: 29900, Rating: 4.7, InStock: true},
	{ID: "buds", Name: "Buds", Category: "Audio", Price: 9900, SalePrice: product.PriceOf(7900), Rating: 4.2, InStock: false},
}

func newTestQueryHandler(t *testing.T) (*Handler, *mocks.MockReadStore, *session.Registry, *fakeCatalog) {
	t.Helper()
	readStore := mocks.NewMockReadStore()
	cat := &fakeCatalog{products: testProducts, status: catalog.Status{Count: len(testProducts)}}
	registry := session.NewRegistry(mocks.NewMockEventStore(), session.Options{})
	return NewHandler(cat, registry, readStore, nil), readStore, registry, cat
}

func ids(products []product.Product) []string {
	out := []string{}
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

// ============================================
// Product Query Tests
// ============================================

func TestHandler_SearchProducts(t *testing.T) {
	handler, _, _, _ := newTestQueryHandler(t)
	criteria, err := catalog.NewCriteria(catalog.Criteria{
		Search:       "IPHONE",
		PriceRange:   catalog.PriceRange{Max: catalog.DefaultPriceCeiling},
		PriceCeiling: catalog.DefaultPriceCeiling,
	})
	require.NoError(t, err)

	list := handler.SearchProducts(criteria, "")

	assert.Equal(t, []string{"iphone"}, ids(list.Products))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, catalog.SortName, list.Sort)
}

func TestHandler_SearchProducts_Sort(t *testing.T) {
	handler, _, _, _ := newTestQueryHandler(t)
	all := catalog.DefaultCriteria(0)

	tests := []struct {
		sort string
		want []string
	}{
		{"price-low", []string{"buds", "redmi", "iphone"}},
		{"price-high", []string{"iphone", "redmi", "buds"}},
		{"rating", []string{"iphone", "redmi", "buds"}},
		{"bogus", []string{"buds", "iphone", "redmi"}},
	}

	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(handler.SearchProducts(all, tt.sort).Products))
		})
	}
}

func TestHandler_SearchProducts_CatalogFlags(t *testing.T) {
	handler, _, _, cat := newTestQueryHandler(t)
	cat.products = []product.Product{}
	cat.status = catalog.Status{Failed: true}

	list := handler.SearchProducts(catalog.DefaultCriteria(0), "")

	assert.True(t, list.Failed)
	assert.False(t, list.Loading)
	assert.NotNil(t, list.Products)
	assert.Empty(t, list.Products)
}

func TestHandler_ListProducts_UsesSessionCriteria(t *testing.T) {
	handler, _, registry, _ := newTestQueryHandler(t)
	ctx := context.Background()
	s, _ := registry.New(ctx)
	_, err := s.ApplyFilter(catalog.SetInStockOnly(true))
	require.NoError(t, err)

	list, err := handler.ListProducts(ctx, s.SessionID(), "price-low")

	require.NoError(t, err)
	assert.Equal(t, []string{"redmi", "iphone"}, ids(list.Products))
	assert.True(t, list.Criteria.InStockOnly)
}

func TestHandler_ListProducts_InvalidSession(t *testing.T) {
	handler, _, _, _ := newTestQueryHandler(t)

	_, err := handler.ListProducts(context.Background(), "", "")

	assert.ErrorIs(t, err, session.ErrInvalidSessionID)
}

func TestHandler_GetProduct(t *testing.T) {
	handler, _, _, _ := newTestQueryHandler(t)

	p, found := handler.GetProduct("redmi")
	assert.True(t, found)
	assert.Equal(t, "Redmi Note", p.Name)

	_, found = handler.GetProduct("non-existent")
	assert.False(t, found)
}

func TestHandler_Facets(t *testing.T) {
	handler, _, _, _ := newTestQueryHandler(t)

	facets := handler.Facets()

	assert.Equal(t, []catalog.CategoryCount{{Name: "Audio", Count: 1}, {Name: "Phones", Count: 2}}, facets.Categories)
	assert.Equal(t, 1, facets.OnSale)
}

// ============================================
// Session Query Tests
// ============================================

func TestHandler_GetCart(t *testing.T) {
	handler, _, registry, _ := newTestQueryHandler(t)
	ctx := context.Background()
	s, _ := registry.New(ctx)
	_, err := s.AddToCart(ctx, testProducts[0], 1)
	require.NoError(t, err)

	snap, err := handler.GetCart(ctx, s.SessionID())

	require.NoError(t, err)
	assert.Len(t, snap.Cart.Items, 1)
	assert.Equal(t, 119900, snap.Totals.Subtotal)
}

func TestHandler_GetWishlist_SkipsUnknownProducts(t *testing.T) {
	handler, _, registry, _ := newTestQueryHandler(t)
	ctx := context.Background()
	s, _ := registry.New(ctx)
	_, _ = s.MoveToWishlist(ctx, "buds")
	_, _ = s.MoveToWishlist(ctx, "discontinued")
	_, _ = s.MoveToWishlist(ctx, "iphone")

	products, err := handler.GetWishlist(ctx, s.SessionID())

	require.NoError(t, err)
	assert.Equal(t, []string{"buds", "iphone"}, ids(products))
}

// ============================================
// Projected Cart Query Tests
// ============================================

func TestHandler_GetProjectedCart_Found(t *testing.T) {
	handler, readStore, _, _ := newTestQueryHandler(t)
	expected := &readmodel.CartReadModel{ID: "cart-sess-1", SessionID: "sess-1", Version: 3}
	readStore.SetData(readmodel.CollectionCarts, "cart-sess-1", expected)

	got, err := handler.GetProjectedCart(context.Background(), "sess-1")

	require.NoError(t, err)
	assert.Same(t, expected, got)
}

func TestHandler_GetProjectedCart_NotFoundReturnsEmpty(t *testing.T) {
	handler, _, _, _ := newTestQueryHandler(t)

	got, err := handler.GetProjectedCart(context.Background(), "sess-1")

	require.NoError(t, err)
	assert.Equal(t, "cart-sess-1", got.ID)
	assert.Empty(t, got.Items)
}

func TestHandler_ListCarts(t *testing.T) {
	handler, readStore, _, _ := newTestQueryHandler(t)
	readStore.SetData(readmodel.CollectionCarts, "cart-b", &readmodel.CartReadModel{ID: "cart-b"})
	readStore.SetData(readmodel.CollectionCarts, "cart-a", &readmodel.CartReadModel{ID: "cart-a"})

	carts, err := handler.ListCarts(context.Background())

	require.NoError(t, err)
	require.Len(t, carts, 2)
	assert.Equal(t, "cart-a", carts[0].ID)
}

func TestHandler_ListCarts_Error(t *testing.T) {
	handler, readStore, _, _ := newTestQueryHandler(t)
	readStore.GetErr = errors.New("down")

	_, err := handler.ListCarts(context.Background())

	assert.ErrorIs(t, err, readStore.GetErr)
}
