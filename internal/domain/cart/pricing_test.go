package cart

import (
	"testing"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTotals_BelowFreeShipping(t *testing.T) {
	a := product.Product{ID: "A", Name: "A", Price: 10000}
	b := product.Product{ID: "B", Name: "B", Price: 5000}
	c := New("s").WithItem(NewLineItem(a, 2, now)).WithItem(NewLineItem(b, 1, now))

	totals := DefaultPricing().Totals(c)

	assert.Equal(t, Totals{ItemCount: 3, Subtotal: 25000, Shipping: 5000, Tax: 2500, Total: 32500}, totals)
}

func TestTotals_AtOrAboveFreeShipping(t *testing.T) {
	a := product.Product{ID: "A", Name: "A", Price: 10000}
	b := product.Product{ID: "B", Name: "B", Price: 5000}
	c := New("s").WithItem(NewLineItem(a, 2, now)).WithItem(NewLineItem(b, 1, now))
	c, _ = c.WithQuantity("A", 6)

	totals := DefaultPricing().Totals(c)

	assert.Equal(t, 65000, totals.Subtotal)
	assert.Equal(t, 0, totals.Shipping)
	assert.Equal(t, 6500, totals.Tax)
	assert.Equal(t, 71500, totals.Total)
}

func TestTotals_ExactlyAtThreshold(t *testing.T) {
	a := product.Product{ID: "A", Name: "A", Price: 50000}
	c := New("s").WithItem(NewLineItem(a, 1, now))

	assert.Equal(t, 0, DefaultPricing().Totals(c).Shipping)
}

func TestTotals_EmptyCart(t *testing.T) {
	assert.Equal(t, Totals{}, DefaultPricing().Totals(New("s")))
}

func TestTotals_Savings(t *testing.T) {
	c := New("s").WithItem(NewLineItem(phoneCase, 3, now))

	totals := DefaultPricing().Totals(c)

	assert.Equal(t, 3000, totals.Savings)
	assert.Equal(t, 15000, totals.Subtotal)
}

func TestTotals_TaxRounding(t *testing.T) {
	pricing := Pricing{FreeShippingThreshold: 0, TaxRate: decimal.RequireFromString("0.0825")}
	p := product.Product{ID: "p", Name: "p", Price: 1999}
	c := New("s").WithItem(NewLineItem(p, 1, now))

	totals := pricing.Totals(c)

	// 1999 * 0.0825 = 164.9175
	assert.Equal(t, 165, totals.Tax)
	assert.Equal(t, 2164, totals.Total)
}
