package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_NewMintsUUID(t *testing.T) {
	reg := NewRegistry(store.NewEventStore(nil, nil), Options{})

	s, err := reg.New(context.Background())

	require.NoError(t, err)
	_, parseErr := uuid.Parse(s.SessionID())
	assert.NoError(t, parseErr)
	assert.Equal(t, 1, reg.Len())
	assert.True(t, s.Snapshot().Cart.IsEmpty())
}

func TestRegistry_OpenReturnsLiveStore(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(store.NewEventStore(nil, nil), Options{})
	s, _ := reg.New(ctx)

	opened, err := reg.Open(ctx, s.SessionID())

	require.NoError(t, err)
	assert.Same(t, s, opened)
}

func TestRegistry_OpenRejectsEmptyID(t *testing.T) {
	reg := NewRegistry(store.NewEventStore(nil, nil), Options{})

	_, err := reg.Open(context.Background(), "")

	assert.ErrorIs(t, err, ErrInvalidSessionID)
}

func TestRegistry_OpenUnknownStartsEmpty(t *testing.T) {
	reg := NewRegistry(store.NewEventStore(nil, nil), Options{})

	s, err := reg.Open(context.Background(), "never-seen")

	require.NoError(t, err)
	assert.Equal(t, "never-seen", s.SessionID())
	assert.Equal(t, cart.GetCartID("never-seen"), s.Snapshot().Cart.ID)
	assert.Zero(t, s.Snapshot().Version)
}

func TestRegistry_SweepThenOpenRehydrates(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	es := store.NewEventStore(nil, nil)
	reg := NewRegistry(es, Options{Now: clock.Now})

	s, _ := reg.New(ctx)
	_, _ = s.AddToCart(ctx, productA, 2)
	_, _ = s.AddToCart(ctx, productB, 1)
	_, _ = s.MoveToWishlist(ctx, "B")
	before := s.Snapshot()

	clock.Advance(time.Hour)
	assert.Equal(t, 1, reg.SweepIdle(30*time.Minute))
	assert.Zero(t, reg.Len())

	reopened, err := reg.Open(ctx, s.SessionID())
	require.NoError(t, err)
	assert.NotSame(t, s, reopened)
	assert.Equal(t, before.Cart, reopened.Snapshot().Cart)
	assert.Equal(t, before.Wishlist, reopened.Snapshot().Wishlist)
	assert.Equal(t, before.Totals, reopened.Snapshot().Totals)
	assert.Equal(t, 3, reopened.Snapshot().Version)
}

func TestRegistry_RehydratesFromSnapshotAndTail(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	es := store.NewEventStore(nil, nil)
	reg := NewRegistry(es, Options{Now: clock.Now})

	s, _ := reg.New(ctx)
	for i := 0; i < store.SnapshotThreshold+3; i++ {
		_, err := s.AddToCart(ctx, productA, 1)
		require.NoError(t, err)
	}
	snap, err := es.GetSnapshot(ctx, cart.GetCartID(s.SessionID()))
	require.NoError(t, err)
	require.NotNil(t, snap)

	clock.Advance(time.Hour)
	reg.SweepIdle(time.Minute)

	reopened, err := reg.Open(ctx, s.SessionID())
	require.NoError(t, err)
	assert.Equal(t, store.SnapshotThreshold+3, reopened.Snapshot().Cart.Items[0].Quantity)
	assert.Equal(t, store.SnapshotThreshold+3, reopened.Snapshot().Version)
}

func TestRegistry_OpenLoadError(t *testing.T) {
	es := mocks.NewMockEventStore()
	es.GetEventsErr = errors.New("db down")
	reg := NewRegistry(es, Options{})

	_, err := reg.Open(context.Background(), "sess-1")

	assert.ErrorIs(t, err, es.GetEventsErr)
	assert.Zero(t, reg.Len())
}

func TestRegistry_SweepKeepsActiveSessions(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	reg := NewRegistry(store.NewEventStore(nil, nil), Options{Now: clock.Now})

	idle, _ := reg.New(ctx)
	active, _ := reg.New(ctx)

	clock.Advance(20 * time.Minute)
	active.Snapshot()
	clock.Advance(20 * time.Minute)

	assert.Equal(t, 1, reg.SweepIdle(30*time.Minute))
	_, stillIdle := reg.lookup(idle.SessionID())
	_, stillActive := reg.lookup(active.SessionID())
	assert.False(t, stillIdle)
	assert.True(t, stillActive)
}

func TestRegistry_ConcurrentOpenSharesOneStore(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(store.NewEventStore(nil, nil), Options{})

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		stores = map[*Store]bool{}
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := reg.Open(ctx, "shared")
			assert.NoError(t, err)
			mu.Lock()
			stores[s] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, stores, 1)
	assert.Equal(t, 1, reg.Len())
}
