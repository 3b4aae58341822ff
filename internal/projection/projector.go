package projection

import (
	"context"
	"fmt"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/readmodel"
	"github.com/example/ec-storefront/internal/session"
	"go.uber.org/zap"
)

// Projector keeps the cart read models in step with the event stream. It is
// fed by the Kafka consumer, the Kinesis Lambda or LocalPublisher.
type Projector struct {
	readStore store.ReadStoreInterface
	pricing   cart.Pricing
	logger    *zap.Logger
}

func NewProjector(readStore store.ReadStoreInterface, pricing cart.Pricing, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{readStore: readStore, pricing: pricing, logger: logger.Named("projector")}
}

// HandleEvent decodes a published store.Event and applies it. Events of
// other aggregate types are ignored.
func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	event, err := store.DecodeEvent(value)
	if err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}

	p.logger.Debug("received event",
		zap.String("event_type", event.EventType),
		zap.String("aggregate_id", event.AggregateID),
		zap.Int("version", event.Version))

	switch event.AggregateType {
	case cart.AggregateType:
		return p.handleCartEvent(ctx, event)
	}
	return nil
}

// Apply projects an event that is already decoded.
func (p *Projector) Apply(ctx context.Context, event store.Event) error {
	if event.AggregateType != cart.AggregateType {
		return nil
	}
	return p.handleCartEvent(ctx, event)
}

func (p *Projector) handleCartEvent(ctx context.Context, event store.Event) error {
	current, ok, err := p.readStore.Get(ctx, readmodel.CollectionCarts, event.AggregateID)
	if err != nil {
		return err
	}

	state := session.NewState(cart.SessionIDOf(event.AggregateID))
	if ok {
		model := current.(*readmodel.CartReadModel)
		if event.Version <= model.Version {
			p.logger.Debug("skipping already projected event",
				zap.String("aggregate_id", event.AggregateID),
				zap.Int("version", event.Version))
			return nil
		}
		state.Cart = model.Cart()
		state.Wishlist = model.WishlistValue()
		state.Version = model.Version
	}

	if err := state.ApplyEvent(event); err != nil {
		return fmt.Errorf("failed to project %s: %w", event.EventType, err)
	}

	model := readmodel.NewCartReadModel(state.Cart, state.Wishlist, p.pricing.Totals(state.Cart), event.Timestamp)
	return p.readStore.Set(ctx, readmodel.CollectionCarts, state.ID, model)
}

// Rebuild replays every stored event into the read store and returns the
// number of events applied.
func (p *Projector) Rebuild(ctx context.Context, events store.EventStoreInterface) (int, error) {
	all, err := events.GetAllEvents(ctx)
	if err != nil {
		return 0, err
	}
	for _, event := range all {
		if err := p.Apply(ctx, event); err != nil {
			return 0, err
		}
	}
	p.logger.Info("read models rebuilt", zap.Int("events", len(all)))
	return len(all), nil
}
