package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"card-battle-server/game"
)

// MemoryStore is a DeckStore held in process memory. It is used when no
// database is configured and in tests.
type MemoryStore struct {
	mu        sync.RWMutex
	cards     map[string]game.Card
	cardOrder []string
	decks     map[string]Deck
}

// NewMemoryStore returns a store seeded with cards and the starter decks built from them.
func NewMemoryStore(cards []game.Card) *MemoryStore {
	s := &MemoryStore{
		cards: make(map[string]game.Card, len(cards)),
		decks: make(map[string]Deck),
	}
	for _, c := range cards {
		if _, ok := s.cards[c.ID]; !ok {
			s.cardOrder = append(s.cardOrder, c.ID)
		}
		s.cards[c.ID] = c
	}
	for _, d := range StarterDecks(cards) {
		s.decks[d.ID] = d
	}
	return s
}

// ListCards returns the catalog in seed order.
func (s *MemoryStore) ListCards(ctx context.Context) ([]game.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]game.Card, 0, len(s.cardOrder))
	for _, id := range s.cardOrder {
		out = append(out, s.cards[id])
	}
	return out, nil
}

// ListDecks returns the starter decks followed by ownerID's decks, sorted by name.
func (s *MemoryStore) ListDecks(ctx context.Context, ownerID string) ([]Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Deck
	for _, d := range s.decks {
		if d.Starter || (ownerID != "" && d.OwnerID == ownerID) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Starter != out[j].Starter {
			return out[i].Starter
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// GetDeck returns the deck's cards in deck order.
func (s *MemoryStore) GetDeck(ctx context.Context, deckID, ownerID string) ([]game.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decks[deckID]
	if !ok {
		return nil, ErrDeckNotFound
	}
	if !canUse(d.OwnerID, ownerID) {
		return nil, ErrWrongOwner
	}
	if len(d.CardIDs) != game.DeckSize {
		return nil, ErrWrongSize
	}
	cards := make([]game.Card, 0, len(d.CardIDs))
	for _, id := range d.CardIDs {
		c, ok := s.cards[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCard, id)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// CreateDeck validates and stores a new deck owned by ownerID.
func (s *MemoryStore) CreateDeck(ctx context.Context, ownerID, name string, cardIDs []string) (Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ValidateDeck(cardIDs, func(id string) bool { _, ok := s.cards[id]; return ok }); err != nil {
		return Deck{}, err
	}
	d := Deck{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    name,
		CardIDs: append([]string{}, cardIDs...),
	}
	s.decks[d.ID] = d
	return d, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() {}
