package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/ec-storefront/internal/catalog"
	"github.com/example/ec-storefront/internal/domain/aggregate"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/wishlist"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"go.uber.org/zap"
)

// Snapshot is an immutable copy of a session's state handed to callers and
// observers. Totals are derived on every snapshot.
type Snapshot struct {
	SessionID string            `json:"session_id"`
	Cart      cart.Cart         `json:"cart"`
	Wishlist  wishlist.Wishlist `json:"wishlist"`
	Criteria  catalog.Criteria  `json:"criteria"`
	Totals    cart.Totals       `json:"totals"`
	Version   int               `json:"version"`
}

// Observer receives every snapshot produced by a state change.
type Observer func(Snapshot)

// Store is the single mutation entry point for one browsing session.
//
// Mutations are serialized. A cart change is appended to the event store
// before the in-memory state is replaced, so a failed append leaves the
// session untouched. Observers run synchronously after each change, in
// dispatch order, once the state lock is released. They may read the Store
// but must not call its mutators.
type Store struct {
	sessionID string
	events    store.EventStoreInterface
	pricing   cart.Pricing
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	state    State
	criteria catalog.Criteria

	// notifyMu is taken before mu is released so notifications keep the
	// order of the changes that produced them.
	notifyMu sync.Mutex

	obsMu     sync.Mutex
	observers []observerEntry
	nextObsID int

	lastActive atomic.Int64
}

type observerEntry struct {
	id int
	fn Observer
}

func newStore(state *State, events store.EventStoreInterface, opts Options) *Store {
	s := &Store{
		sessionID: state.SessionID,
		events:    events,
		pricing:   opts.Pricing,
		logger:    opts.Logger.Named("session").With(zap.String("session_id", state.SessionID)),
		now:       opts.Now,
		state:     *state,
		criteria:  catalog.DefaultCriteria(opts.PriceCeiling),
	}
	s.touch()
	return s
}

func (s *Store) SessionID() string { return s.sessionID }

// LastActive is the time of the most recent call on the store.
func (s *Store) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Store) touch() {
	s.lastActive.Store(s.now().UnixNano())
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	criteria := s.criteria
	criteria.Categories = slices.Clone(criteria.Categories)
	return Snapshot{
		SessionID: s.sessionID,
		Cart:      s.state.Cart.Clone(),
		Wishlist:  s.state.Wishlist.Clone(),
		Criteria:  criteria,
		Totals:    s.pricing.Totals(s.state.Cart),
		Version:   s.state.Version,
	}
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is safe to call more than once and from inside fn.
func (s *Store) Subscribe(fn Observer) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observerEntry{id: id, fn: fn})

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		s.observers = slices.DeleteFunc(s.observers, func(e observerEntry) bool {
			return e.id == id
		})
	}
}

func (s *Store) notify(snap Snapshot) {
	s.obsMu.Lock()
	observers := slices.Clone(s.observers)
	s.obsMu.Unlock()

	for _, o := range observers {
		o.fn(snap)
	}
}

// ============================================
// Cart operations
// ============================================

// AddToCart adds qty of p, clamped to at least 1. A product already in the
// cart has its quantity increased and keeps the price it was first added at.
func (s *Store) AddToCart(ctx context.Context, p product.Product, qty int) (Snapshot, error) {
	if p.ID == "" {
		return s.Snapshot(), cart.ErrInvalidProduct
	}
	return s.dispatch(ctx, func(st State) (string, any, bool) {
		now := s.now()
		return cart.EventItemAdded, cart.ItemAddedToCart{
			CartID:        st.ID,
			SessionID:     st.SessionID,
			ProductID:     p.ID,
			Name:          p.Name,
			Quantity:      cart.ClampQuantity(qty),
			UnitPrice:     p.EffectivePrice(),
			OriginalPrice: p.Price,
			AddedAt:       now,
		}, true
	})
}

// UpdateQuantity sets the quantity of a line directly, clamped to at least 1.
// It is a no-op when the product is not in the cart.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) (Snapshot, error) {
	return s.dispatch(ctx, func(st State) (string, any, bool) {
		if _, ok := st.Cart.Find(productID); !ok {
			return "", nil, false
		}
		return cart.EventQuantityUpdated, cart.ItemQuantityUpdated{
			CartID:    st.ID,
			SessionID: st.SessionID,
			ProductID: productID,
			Quantity:  cart.ClampQuantity(quantity),
			UpdatedAt: s.now(),
		}, true
	})
}

func (s *Store) RemoveFromCart(ctx context.Context, productID string) (Snapshot, error) {
	return s.dispatch(ctx, func(st State) (string, any, bool) {
		if _, ok := st.Cart.Find(productID); !ok {
			return "", nil, false
		}
		return cart.EventItemRemoved, cart.ItemRemovedFromCart{
			CartID:    st.ID,
			SessionID: st.SessionID,
			ProductID: productID,
			RemovedAt: s.now(),
		}, true
	})
}

// MoveToWishlist takes the product out of the cart and into the wishlist as
// a single change. Observers never see it in both or neither.
func (s *Store) MoveToWishlist(ctx context.Context, productID string) (Snapshot, error) {
	if productID == "" {
		return s.Snapshot(), cart.ErrInvalidProduct
	}
	return s.dispatch(ctx, func(st State) (string, any, bool) {
		_, inCart := st.Cart.Find(productID)
		if !inCart && st.Wishlist.Contains(productID) {
			return "", nil, false
		}
		return cart.EventItemMovedToWishlist, cart.ItemMovedToWishlist{
			CartID:    st.ID,
			SessionID: st.SessionID,
			ProductID: productID,
			MovedAt:   s.now(),
		}, true
	})
}

func (s *Store) RemoveFromWishlist(ctx context.Context, productID string) (Snapshot, error) {
	return s.dispatch(ctx, func(st State) (string, any, bool) {
		if !st.Wishlist.Contains(productID) {
			return "", nil, false
		}
		return cart.EventWishlistItemRemoved, cart.WishlistItemRemoved{
			CartID:    st.ID,
			SessionID: st.SessionID,
			ProductID: productID,
			RemovedAt: s.now(),
		}, true
	})
}

func (s *Store) ClearCart(ctx context.Context) (Snapshot, error) {
	return s.dispatch(ctx, func(st State) (string, any, bool) {
		if st.Cart.IsEmpty() {
			return "", nil, false
		}
		return cart.EventCartCleared, cart.CartCleared{
			CartID:    st.ID,
			SessionID: st.SessionID,
			ClearedAt: s.now(),
		}, true
	})
}

// dispatch builds an event from the current state, appends it and applies
// it. decide reports false when the intent does not change anything.
func (s *Store) dispatch(ctx context.Context, decide func(State) (string, any, bool)) (Snapshot, error) {
	s.touch()
	s.mu.Lock()
	changed, err := s.applyLocked(ctx, decide)
	snap := s.snapshotLocked()
	s.unlockAndNotify(snap, changed)
	return snap, err
}

// applyLocked reports whether the state changed. mu must be held.
func (s *Store) applyLocked(ctx context.Context, decide func(State) (string, any, bool)) (bool, error) {
	eventType, data, ok := decide(s.state)
	if !ok {
		return false, nil
	}

	event, err := s.events.Append(ctx, s.state.ID, cart.AggregateType, eventType, data)
	if err != nil {
		return false, fmt.Errorf("failed to append %s: %w", eventType, err)
	}

	if event.Version != s.state.Version+1 {
		// Another process wrote to this cart; rebuild from the store so the
		// new event lands on top of the writes we have not seen.
		s.logger.Warn("cart version skew, reloading",
			zap.Int("have", s.state.Version), zap.Int("got", event.Version))
		if err := s.reloadLocked(ctx); err != nil {
			return false, err
		}
	} else {
		next := s.state
		if err := next.ApplyEvent(*event); err != nil {
			return false, fmt.Errorf("failed to apply %s: %w", eventType, err)
		}
		s.state = next
	}

	s.logger.Debug("cart event applied",
		zap.String("event_type", eventType), zap.Int("version", s.state.Version))

	if err := aggregate.MaybeCreateSnapshot(ctx, s.events, &s.state, cart.AggregateType); err != nil {
		s.logger.Warn("snapshot failed", zap.Error(err))
	}
	return true, nil
}

// unlockAndNotify releases mu and, when the state changed, hands snap to the
// observers outside of it.
func (s *Store) unlockAndNotify(snap Snapshot, changed bool) {
	if !changed {
		s.mu.Unlock()
		return
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	s.notify(snap)
}

func (s *Store) reloadLocked(ctx context.Context) error {
	state, _, err := aggregate.LoadAggregate(ctx, s.events, s.state.ID, func() *State {
		return NewState(s.sessionID)
	})
	if err != nil {
		return fmt.Errorf("failed to reload session: %w", err)
	}
	s.state = *state
	return nil
}

// ============================================
// Filter operations
// ============================================

// ApplyFilter reduces change into the session criteria. An invalid result is
// rejected with catalog.ErrInvalidCriteria and the criteria stay as they were.
func (s *Store) ApplyFilter(change catalog.Change) (Snapshot, error) {
	s.touch()
	s.mu.Lock()

	next, err := catalog.Reduce(s.criteria, change)
	if err == nil {
		s.criteria = next
	}
	snap := s.snapshotLocked()
	s.unlockAndNotify(snap, err == nil)
	return snap, err
}

func (s *Store) ResetFilters() Snapshot {
	s.touch()
	s.mu.Lock()
	s.criteria = catalog.Reset(s.criteria)
	snap := s.snapshotLocked()
	s.unlockAndNotify(snap, true)
	return snap
}

// Criteria returns a copy of the session's filter criteria.
func (s *Store) Criteria() catalog.Criteria {
	return s.Snapshot().Criteria
}

// IsInvalidInput reports whether err was caused by the caller's input rather
// than by storage.
func IsInvalidInput(err error) bool {
	return errors.Is(err, catalog.ErrInvalidCriteria) || errors.Is(err, cart.ErrInvalidProduct)
}
