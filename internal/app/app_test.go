package app

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T, vars map[string]string) *config.Config {
	t.Helper()
	vars["JWT_SECRET"] = "0123456789abcdef0123456789abcdef"
	cfg, err := config.FromLookup(func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	})
	require.NoError(t, err)
	return cfg
}

func TestNew_MemoryBackend(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t, map[string]string{}), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &store.EventStore{}, a.EventStore)
	assert.IsType(t, &store.ReadStore{}, a.ReadStore)
	assert.Nil(t, a.DB)

	a.Catalog.Start(ctx)
	<-a.Catalog.Done()
	assert.NotEmpty(t, a.Catalog.Products())
}

func TestNew_LocalProjectionFeedsReadStore(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t, map[string]string{}), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()
	a.Catalog.Start(ctx)
	<-a.Catalog.Done()

	s, err := a.Registry.New(ctx)
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, a.Catalog.Products()[0], 1)
	require.NoError(t, err)

	carts, err := a.ReadStore.GetAll(ctx, "carts")
	require.NoError(t, err)
	assert.Len(t, carts, 1)
}

func TestNew_YAMLCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
products:
  - id: lamp
    name: Desk Lamp
    category: Home
    price: 4500
    rating: 4.2
    in_stock: true
`), 0o600))

	ctx := context.Background()
	a, err := New(ctx, testConfig(t, map[string]string{"CATALOG_SOURCE": "yaml", "CATALOG_SEED_FILE": path}), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()
	a.Catalog.Start(ctx)
	<-a.Catalog.Done()

	p, ok := a.Catalog.Lookup("lamp")
	require.True(t, ok)
	assert.Equal(t, "Desk Lamp", p.Name)
}

func TestNew_MissingSeedFile(t *testing.T) {
	cfg := testConfig(t, map[string]string{"CATALOG_SOURCE": "yaml", "CATALOG_SEED_FILE": "/does/not/exist.yaml"})

	_, err := New(context.Background(), cfg, zap.NewNop())

	assert.Error(t, err)
}

func TestSweeper(t *testing.T) {
	var calls atomic.Int32
	var gotTTL atomic.Int64
	target := SweepFunc(func(ttl time.Duration) int {
		calls.Add(1)
		gotTTL.Store(int64(ttl))
		return 0
	})

	c, err := NewSweeper("@every 1s", time.Minute, zap.NewNop(), target)
	require.NoError(t, err)
	c.Start()
	defer c.Stop()

	assert.Eventually(t, func() bool { return calls.Load() > 0 }, 3*time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(time.Minute), gotTTL.Load())
}

func TestSweeper_BadSchedule(t *testing.T) {
	_, err := NewSweeper("every now and then", time.Minute, zap.NewNop())
	assert.Error(t, err)
}
