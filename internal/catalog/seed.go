package catalog

import "github.com/example/ec-storefront/internal/domain/product"

// DefaultProducts is the built-in catalog used when no seed file or
// database is configured.
func DefaultProducts() []product.Product {
	return []product.Product{
		{
			ID: "iphone-15-pro", Name: "iPhone 15 Pro", Category: "Smartphones", Brand: "Apple",
			Price: 119900, Rating: 4.9, ReviewCount: 2847, InStock: true, IsNew: true,
			Tags: []string{"5G", "Pro Camera", "Titanium"},
		},
		{
			ID: "galaxy-s24-ultra", Name: "Samsung Galaxy S24 Ultra", Category: "Smartphones", Brand: "Samsung",
			Price: 129999, SalePrice: product.PriceOf(109999), Rating: 4.8, ReviewCount: 1923, InStock: true, IsNew: true,
			Tags: []string{"5G", "S Pen", "AI"},
		},
		{
			ID: "redmi-note-13", Name: "Redmi Note 13 Pro", Category: "Smartphones", Brand: "Xiaomi",
			Price: 29900, Rating: 4.7, ReviewCount: 3412, InStock: true,
			Tags: []string{"Budget", "108MP"},
		},
		{
			ID: "macbook-air-m3", Name: "MacBook Air M3", Category: "Laptops", Brand: "Apple",
			Price: 129900, SalePrice: product.PriceOf(114900), Rating: 4.8, ReviewCount: 986, InStock: true, IsNew: true,
			Tags: []string{"M3", "Lightweight"},
		},
		{
			ID: "xps-15", Name: "Dell XPS 15", Category: "Laptops", Brand: "Dell",
			Price: 189999, Rating: 4.6, ReviewCount: 642, InStock: false,
			Tags: []string{"OLED", "Creator"},
		},
		{
			ID: "rog-zephyrus-g16", Name: "ASUS ROG Zephyrus G16", Category: "Laptops", Brand: "ASUS",
			Price: 249999, Rating: 4.7, ReviewCount: 311, InStock: true,
			Tags: []string{"Gaming", "RTX"},
		},
		{
			ID: "airpods-pro-2", Name: "AirPods Pro (2nd Gen)", Category: "Audio", Brand: "Apple",
			Price: 24900, SalePrice: product.PriceOf(18900), Rating: 4.8, ReviewCount: 5120, InStock: true,
			Tags: []string{"ANC", "Wireless"},
		},
		{
			ID: "sony-wh-1000xm5", Name: "Sony WH-1000XM5", Category: "Audio", Brand: "Sony",
			Price: 39999, Rating: 4.7, ReviewCount: 2210, InStock: true,
			Tags: []string{"ANC", "Over-ear"},
		},
		{
			ID: "apple-watch-s9", Name: "Apple Watch Series 9", Category: "Wearables", Brand: "Apple",
			Price: 39900, Rating: 4.6, ReviewCount: 1408, InStock: true, IsNew: true,
			Tags: []string{"Health", "GPS"},
		},
		{
			ID: "galaxy-watch-6", Name: "Galaxy Watch 6", Category: "Wearables", Brand: "Samsung",
			Price: 29999, SalePrice: product.PriceOf(24999), Rating: 4.4, ReviewCount: 876, InStock: false,
			Tags: []string{"Health", "Wear OS"},
		},
		{
			ID: "ipad-air", Name: "iPad Air", Category: "Tablets", Brand: "Apple",
			Price: 59900, Rating: 4.7, ReviewCount: 1752, InStock: true,
			Tags: []string{"M2", "Pencil"},
		},
		{
			ID: "anker-powercore", Name: "Anker PowerCore 20K", Category: "Accessories", Brand: "Anker",
			Price: 4999, SalePrice: product.PriceOf(3499), Rating: 4.5, ReviewCount: 9310, InStock: true,
			Tags: []string{"Charging"},
		},
	}
}
