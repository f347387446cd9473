package storage

import (
	"context"
	"errors"

	"card-battle-server/game"
)

// Deck store errors.
var (
	ErrDeckNotFound = errors.New("deck not found")
	ErrWrongOwner   = errors.New("deck belongs to another player")
	ErrWrongSize    = errors.New("deck does not have exactly 20 cards")
	ErrUnknownCard  = errors.New("unknown card")
)

// Deck is a named, ordered list of card ids. Starter decks have no owner and
// can be used by anyone.
type Deck struct {
	ID      string   `json:"id"`
	OwnerID string   `json:"ownerId,omitempty"`
	Name    string   `json:"name"`
	CardIDs []string `json:"cardIds"`
	Starter bool     `json:"starter"`
}

// DeckStore abstracts the card catalog and deck persistence.
// Implementations can be swapped for testing or different backends.
type DeckStore interface {
	// Read
	ListCards(ctx context.Context) ([]game.Card, error)
	ListDecks(ctx context.Context, ownerID string) ([]Deck, error)
	// GetDeck resolves a deck the caller may use into its 20 card definitions.
	GetDeck(ctx context.Context, deckID, ownerID string) ([]game.Card, error)

	// Write
	CreateDeck(ctx context.Context, ownerID, name string, cardIDs []string) (Deck, error)

	// Lifecycle
	Close()
}

// Ensure both implementations satisfy DeckStore at compile time.
var (
	_ DeckStore = (*Store)(nil)
	_ DeckStore = (*MemoryStore)(nil)
)
