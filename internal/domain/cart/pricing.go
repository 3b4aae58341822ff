package cart

import "github.com/shopspring/decimal"

// Pricing holds the shop-wide rules used to derive cart totals.
type Pricing struct {
	FreeShippingThreshold int
	ShippingFee           int
	TaxRate               decimal.Decimal
}

// DefaultPricing: free shipping from $500, otherwise $50 flat, 10% tax.
func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: 50000,
		ShippingFee:           5000,
		TaxRate:               decimal.NewFromFloat(0.10),
	}
}

// Totals are derived from a cart on every read and never stored with it.
type Totals struct {
	ItemCount int `json:"item_count"`
	Subtotal  int `json:"subtotal"`
	Shipping  int `json:"shipping"`
	Tax       int `json:"tax"`
	Total     int `json:"total"`
	Savings   int `json:"savings"`
}

func (p Pricing) Totals(c Cart) Totals {
	var t Totals
	for _, item := range c.Items {
		t.ItemCount += item.Quantity
		t.Subtotal += item.LineTotal()
		if item.OriginalPrice > item.UnitPrice {
			t.Savings += (item.OriginalPrice - item.UnitPrice) * item.Quantity
		}
	}

	if t.ItemCount > 0 && t.Subtotal < p.FreeShippingThreshold {
		t.Shipping = p.ShippingFee
	}
	t.Tax = int(decimal.NewFromInt(int64(t.Subtotal)).Mul(p.TaxRate).Round(0).IntPart())
	t.Total = t.Subtotal + t.Shipping + t.Tax
	return t
}
