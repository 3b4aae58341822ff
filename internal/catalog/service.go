package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/example/ec-storefront/internal/domain/product"
	"go.uber.org/zap"
)

type Status struct {
	Loading bool `json:"loading"`
	Failed  bool `json:"failed"`
	Count   int  `json:"count"`
}

// Service holds the most recently loaded catalog.
type Service struct {
	provider Provider
	logger   *zap.Logger

	mu       sync.RWMutex
	products []product.Product
	index    map[string]int
	status   Status
	done     chan struct{}
}

func NewService(provider Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider: provider,
		logger:   logger.Named("catalog"),
		index:    make(map[string]int),
		done:     make(chan struct{}),
	}
}

// Start issues the catalog fetch. It returns immediately; Done is closed
// once the result has been stored. Start must be called once.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	s.status.Loading = true
	s.mu.Unlock()

	results := Load(ctx, s.provider)
	go func() {
		defer close(s.done)
		res := <-results
		s.store(res)
	}()
}

func (s *Service) Done() <-chan struct{} {
	return s.done
}

func (s *Service) store(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = res.Products
	s.index = make(map[string]int, len(res.Products))
	for i, p := range res.Products {
		s.index[p.ID] = i
	}
	s.status = Status{Failed: res.Failed, Count: len(res.Products)}

	if res.Failed {
		s.logger.Error("catalog load failed", zap.Error(res.Err))
		return
	}
	s.logger.Info("catalog loaded", zap.Int("products", len(res.Products)))
}

// Products returns a copy of the loaded catalog, empty while loading or
// after a failed load.
func (s *Service) Products() []product.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.products == nil {
		return []product.Product{}
	}
	return slices.Clone(s.products)
}

func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Service) Lookup(id string) (product.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return product.Product{}, false
	}
	return s.products[i], true
}
