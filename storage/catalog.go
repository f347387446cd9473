package storage

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"card-battle-server/game"
)

//go:embed catalog.json
var catalogJSON []byte

// Catalog returns the built-in card catalog.
func Catalog() ([]game.Card, error) {
	var cards []game.Card
	if err := json.Unmarshal(catalogJSON, &cards); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for _, c := range cards {
		if !c.Type.Valid() {
			return nil, fmt.Errorf("catalog card %s: unknown type %q", c.ID, c.Type)
		}
	}
	return cards, nil
}

// StarterDecks builds the public decks every player can use, from the
// catalog order: the first twenty cards, the next twenty, and every other card.
func StarterDecks(cards []game.Card) []Deck {
	if len(cards) < 2*game.DeckSize {
		return nil
	}
	ids := func(cs []game.Card) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.ID
		}
		return out
	}
	var mixed []game.Card
	for i := 0; i < len(cards) && len(mixed) < game.DeckSize; i += 2 {
		mixed = append(mixed, cards[i])
	}
	return []Deck{
		{ID: "starter-1", Name: "Starter: First Steps", CardIDs: ids(cards[:game.DeckSize]), Starter: true},
		{ID: "starter-2", Name: "Starter: Evolved", CardIDs: ids(cards[game.DeckSize : 2*game.DeckSize]), Starter: true},
		{ID: "starter-3", Name: "Starter: Mixed Bag", CardIDs: ids(mixed), Starter: true},
	}
}

// ValidateDeck checks that cardIDs holds exactly DeckSize known cards.
func ValidateDeck(cardIDs []string, known func(id string) bool) error {
	if len(cardIDs) != game.DeckSize {
		return fmt.Errorf("%w: got %d", ErrWrongSize, len(cardIDs))
	}
	for _, id := range cardIDs {
		if !known(id) {
			return fmt.Errorf("%w: %s", ErrUnknownCard, id)
		}
	}
	return nil
}

// canUse reports whether ownerID may play with a deck owned by deckOwner.
func canUse(deckOwner, ownerID string) bool {
	return deckOwner == "" || deckOwner == ownerID
}
