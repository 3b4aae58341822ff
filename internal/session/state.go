package session

import (
	"encoding/json"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/wishlist"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

// State is the event-sourced half of a session: its cart and wishlist.
// Its aggregate ID is the cart ID.
type State struct {
	ID        string            `json:"id"`
	SessionID string            `json:"session_id"`
	Cart      cart.Cart         `json:"cart"`
	Wishlist  wishlist.Wishlist `json:"wishlist"`
	Version   int               `json:"version"`
}

func NewState(sessionID string) *State {
	return &State{
		ID:        cart.GetCartID(sessionID),
		SessionID: sessionID,
		Cart:      cart.New(sessionID),
		Wishlist:  wishlist.New(),
	}
}

func (s *State) GetID() string   { return s.ID }
func (s *State) GetVersion() int { return s.Version }

// ApplyEvent moves the state forward by one event. Cart and wishlist are
// replaced, never modified in place, so earlier copies of State stay valid.
func (s *State) ApplyEvent(event store.Event) error {
	nextCart, err := cart.Apply(s.Cart, event)
	if err != nil {
		return err
	}

	nextWishlist := s.Wishlist
	switch event.EventType {
	case cart.EventItemMovedToWishlist, cart.EventWishlistItemRemoved:
		var data struct {
			ProductID string `json:"product_id"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if event.EventType == cart.EventItemMovedToWishlist {
			nextWishlist = s.Wishlist.Add(data.ProductID)
		} else {
			nextWishlist, _ = s.Wishlist.Remove(data.ProductID)
		}
	}

	nextCart.ID = s.ID
	nextCart.SessionID = s.SessionID
	s.Cart = nextCart
	s.Wishlist = nextWishlist
	s.Version = event.Version
	return nil
}
