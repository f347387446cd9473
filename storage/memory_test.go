package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-battle-server/game"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	cards, err := Catalog()
	require.NoError(t, err)
	return NewMemoryStore(cards)
}

func TestCatalog_CoversAllTypes(t *testing.T) {
	cards, err := Catalog()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(cards), 2*game.DeckSize)

	seen := make(map[game.ElementType]bool)
	ids := make(map[string]bool)
	for _, c := range cards {
		seen[c.Type] = true
		assert.False(t, ids[c.ID], "duplicate card id %s", c.ID)
		ids[c.ID] = true
		assert.Positive(t, c.HP, "card %s", c.ID)
	}
	for _, typ := range game.AllTypes {
		assert.True(t, seen[typ], "no card of type %s", typ)
	}
}

func TestStarterDecks(t *testing.T) {
	cards, err := Catalog()
	require.NoError(t, err)

	decks := StarterDecks(cards)
	require.Len(t, decks, 3)
	for _, d := range decks {
		assert.Len(t, d.CardIDs, game.DeckSize, d.ID)
		assert.True(t, d.Starter)
		assert.Empty(t, d.OwnerID)
	}
	assert.Nil(t, StarterDecks(cards[:10]))
}

func TestGetDeck_Starter(t *testing.T) {
	s := newTestStore(t)

	cards, err := s.GetDeck(context.Background(), "starter-1", "anyone")
	require.NoError(t, err)
	assert.Len(t, cards, game.DeckSize)
	assert.Equal(t, "Bulbasaur", cards[0].Name)
}

func TestGetDeck_Errors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetDeck(ctx, "nope", "u1")
	assert.ErrorIs(t, err, ErrDeckNotFound)

	starter, _ := s.ListDecks(ctx, "")
	d, err := s.CreateDeck(ctx, "u1", "Mine", starter[0].CardIDs)
	require.NoError(t, err)

	_, err = s.GetDeck(ctx, d.ID, "u2")
	assert.ErrorIs(t, err, ErrWrongOwner)

	s.decks["short"] = Deck{ID: "short", Name: "Short", CardIDs: starter[0].CardIDs[:19]}
	_, err = s.GetDeck(ctx, "short", "u1")
	assert.ErrorIs(t, err, ErrWrongSize)
}

func TestCreateDeck(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	catalog, _ := s.ListCards(ctx)

	ids := make([]string, game.DeckSize)
	for i := range ids {
		ids[i] = catalog[i%3].ID
	}
	d, err := s.CreateDeck(ctx, "u1", "Triple", ids)
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "u1", d.OwnerID)

	cards, err := s.GetDeck(ctx, d.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, catalog[1].ID, cards[1].ID)

	decks, err := s.ListDecks(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, decks, 4)
	assert.Equal(t, d.ID, decks[3].ID, "owned decks come after starters")

	others, _ := s.ListDecks(ctx, "u2")
	assert.Len(t, others, 3)
}

func TestCreateDeck_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateDeck(ctx, "u1", "Small", []string{"pkmn-001"})
	assert.ErrorIs(t, err, ErrWrongSize)

	ids := make([]string, game.DeckSize)
	for i := range ids {
		ids[i] = "pkmn-001"
	}
	ids[7] = "missingno"
	_, err = s.CreateDeck(ctx, "u1", "Glitch", ids)
	assert.ErrorIs(t, err, ErrUnknownCard)
}
