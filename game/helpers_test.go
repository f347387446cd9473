package game

import "fmt"

// makeCards returns n copies of a card with the given stats, each with a distinct id.
func makeCards(prefix string, typ ElementType, hp, atk, def, n int) []Card {
	cards := make([]Card, n)
	for i := range cards {
		cards[i] = Card{
			ID:      fmt.Sprintf("%s-%d", prefix, i),
			Name:    fmt.Sprintf("%s %d", prefix, i),
			Type:    typ,
			HP:      hp,
			Attack:  atk,
			Defense: def,
		}
	}
	return cards
}

func noShuffle([]Card) {}

// newTestSession creates a playing session with unshuffled 20-card decks.
func newTestSession(hostDeck, guestDeck []Card) *Session {
	s, err := NewSession("test-1",
		Seat{PlayerID: "host", Deck: hostDeck},
		Seat{PlayerID: "guest", Deck: guestDeck},
		WithShuffler(noShuffle))
	if err != nil {
		panic(err)
	}
	return s
}
