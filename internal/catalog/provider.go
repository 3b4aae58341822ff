package catalog

import (
	"context"

	"github.com/example/ec-storefront/internal/domain/product"
)

// Provider supplies the product collection. Implementations may block.
type Provider interface {
	Fetch(ctx context.Context) ([]product.Product, error)
}

// Result is the outcome of one catalog load. A failed load carries no
// products.
type Result struct {
	Products []product.Product
	Failed   bool
	Err      error
}

// Load runs a single fetch in the background and delivers exactly one
// Result on the returned channel. There is no retry.
func Load(ctx context.Context, p Provider) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		products, err := p.Fetch(ctx)
		if err != nil {
			ch <- Result{Products: []product.Product{}, Failed: true, Err: err}
			return
		}
		if products == nil {
			products = []product.Product{}
		}
		ch <- Result{Products: products}
	}()
	return ch
}
