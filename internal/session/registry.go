package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/ec-storefront/internal/catalog"
	"github.com/example/ec-storefront/internal/domain/aggregate"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidSessionID = errors.New("invalid session id")

type Options struct {
	Pricing      cart.Pricing
	PriceCeiling int
	Logger       *zap.Logger
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Pricing == (cart.Pricing{}) {
		o.Pricing = cart.DefaultPricing()
	}
	if o.PriceCeiling <= 0 {
		o.PriceCeiling = catalog.DefaultPriceCeiling
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Registry holds the live Store of every active session. Stores evicted by
// SweepIdle are rebuilt from the event store on the next Open.
type Registry struct {
	events store.EventStoreInterface
	opts   Options
	logger *zap.Logger

	mu     sync.Mutex
	stores map[string]*Store
	loads  singleflight.Group
}

func NewRegistry(events store.EventStoreInterface, opts Options) *Registry {
	opts = opts.withDefaults()
	return &Registry{
		events: events,
		opts:   opts,
		logger: opts.Logger.Named("registry"),
		stores: make(map[string]*Store),
	}
}

// New starts a session with a fresh ID and an empty cart.
func (r *Registry) New(ctx context.Context) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := uuid.New().String()
	s := newStore(NewState(id), r.events, r.opts)

	r.mu.Lock()
	r.stores[id] = s
	r.mu.Unlock()

	r.logger.Info("session started", zap.String("session_id", id))
	return s, nil
}

// Open returns the live store for sessionID, rebuilding it from stored
// events when it is not in memory. A session with no history opens empty.
func (r *Registry) Open(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, ErrInvalidSessionID
	}
	if s, ok := r.lookup(sessionID); ok {
		s.touch()
		return s, nil
	}

	v, err, _ := r.loads.Do(sessionID, func() (any, error) {
		if s, ok := r.lookup(sessionID); ok {
			return s, nil
		}
		state, found, err := aggregate.LoadAggregate(ctx, r.events, cart.GetCartID(sessionID), func() *State {
			return NewState(sessionID)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
		}
		s := newStore(state, r.events, r.opts)

		r.mu.Lock()
		r.stores[sessionID] = s
		r.mu.Unlock()

		r.logger.Debug("session opened",
			zap.String("session_id", sessionID),
			zap.Bool("rehydrated", found),
			zap.Int("version", state.Version))
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

func (r *Registry) lookup(sessionID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[sessionID]
	return s, ok
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// SweepIdle evicts stores idle for longer than ttl and returns how many
// were dropped. Their carts remain in the event store.
func (r *Registry) SweepIdle(ttl time.Duration) int {
	cutoff := r.opts.Now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for id, s := range r.stores {
		if s.LastActive().Before(cutoff) {
			delete(r.stores, id)
			dropped++
		}
	}
	if dropped > 0 {
		r.logger.Info("idle sessions evicted", zap.Int("count", dropped), zap.Int("live", len(r.stores)))
	}
	return dropped
}
