package catalog

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/example/ec-storefront/internal/domain/product"
	"gopkg.in/yaml.v3"
)

// StaticProvider serves a fixed product list after an optional delay.
type StaticProvider struct {
	products []product.Product
	delay    time.Duration
}

func NewStaticProvider(products []product.Product, delay time.Duration) *StaticProvider {
	return &StaticProvider{products: slices.Clone(products), delay: delay}
}

func (p *StaticProvider) Fetch(ctx context.Context) ([]product.Product, error) {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return slices.Clone(p.products), nil
}

type seedFile struct {
	Products []product.Product `yaml:"products"`
}

// LoadSeedFile reads a YAML product list of the form `products: [...]`.
// Every entry must validate.
func LoadSeedFile(path string) ([]product.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) ([]product.Product, error) {
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	seen := make(map[string]struct{}, len(seed.Products))
	for i, p := range seed.Products {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("seed product %d: %w", i, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("seed product %d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return seed.Products, nil
}
