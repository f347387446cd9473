package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"card-battle-server/game"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS cards (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	pokedex_number INT  NOT NULL,
	type           TEXT NOT NULL,
	hp             INT  NOT NULL,
	attack         INT  NOT NULL,
	defense        INT  NOT NULL,
	image_url      TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS decks (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL DEFAULT '',
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_decks_owner ON decks(owner_id);
CREATE TABLE IF NOT EXISTS deck_cards (
	deck_id  TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
	position INT  NOT NULL,
	card_id  TEXT NOT NULL REFERENCES cards(id),
	PRIMARY KEY (deck_id, position)
);
`

// Store persists the card catalog and decks in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres, ensures the tables exist and seeds the
// catalog and starter decks. If databaseURL is empty, NewStore returns
// (nil, nil) and the caller should fall back to a MemoryStore.
func NewStore(ctx context.Context, databaseURL string, catalog []game.Card) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	s := &Store{pool: pool}
	if err := s.seed(ctx, catalog); err != nil {
		pool.Close()
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	slog.Info("connected to Postgres", "tag", "storage", "cards", len(catalog))
	return s, nil
}

func (s *Store) seed(ctx context.Context, catalog []game.Card) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range catalog {
		batch.Queue(`INSERT INTO cards (id, name, pokedex_number, type, hp, attack, defense, image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Name, c.PokedexNumber, string(c.Type), c.HP, c.Attack, c.Defense, c.ImageURL)
	}
	for _, d := range StarterDecks(catalog) {
		batch.Queue(`INSERT INTO decks (id, owner_id, name) VALUES ($1, '', $2) ON CONFLICT (id) DO NOTHING`, d.ID, d.Name)
		for i, cardID := range d.CardIDs {
			batch.Queue(`INSERT INTO deck_cards (deck_id, position, card_id) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, d.ID, i, cardID)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// ListCards returns the catalog ordered by pokedex number.
func (s *Store) ListCards(ctx context.Context) ([]game.Card, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, pokedex_number, type, hp, attack, defense, image_url
		FROM cards
		ORDER BY pokedex_number, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCard(row pgx.Row) (game.Card, error) {
	var c game.Card
	var typ string
	if err := row.Scan(&c.ID, &c.Name, &c.PokedexNumber, &typ, &c.HP, &c.Attack, &c.Defense, &c.ImageURL); err != nil {
		return game.Card{}, err
	}
	c.Type = game.ElementType(typ)
	return c, nil
}

// ListDecks returns the starter decks and ownerID's decks.
func (s *Store) ListDecks(ctx context.Context, ownerID string) ([]Deck, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT d.id, d.owner_id, d.name,
			COALESCE(array_agg(dc.card_id ORDER BY dc.position) FILTER (WHERE dc.card_id IS NOT NULL), '{}')
		FROM decks d
		LEFT JOIN deck_cards dc ON dc.deck_id = d.id
		WHERE d.owner_id = '' OR d.owner_id = $1
		GROUP BY d.id, d.owner_id, d.name
		ORDER BY d.owner_id = '' DESC, d.name`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Deck
	for rows.Next() {
		var d Deck
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Name, &d.CardIDs); err != nil {
			return nil, err
		}
		d.Starter = d.OwnerID == ""
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDeck returns the deck's cards in deck order.
func (s *Store) GetDeck(ctx context.Context, deckID, ownerID string) ([]game.Card, error) {
	var deckOwner string
	err := s.pool.QueryRow(ctx, `SELECT owner_id FROM decks WHERE id = $1`, deckID).Scan(&deckOwner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDeckNotFound
	}
	if err != nil {
		return nil, err
	}
	if !canUse(deckOwner, ownerID) {
		return nil, ErrWrongOwner
	}

	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.name, c.pokedex_number, c.type, c.hp, c.attack, c.defense, c.image_url
		FROM deck_cards dc
		JOIN cards c ON c.id = dc.card_id
		WHERE dc.deck_id = $1
		ORDER BY dc.position`,
		deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cards := make([]game.Card, 0, game.DeckSize)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cards) != game.DeckSize {
		return nil, ErrWrongSize
	}
	return cards, nil
}

// CreateDeck validates cardIDs against the catalog and stores the deck.
func (s *Store) CreateDeck(ctx context.Context, ownerID, name string, cardIDs []string) (Deck, error) {
	known := make(map[string]bool)
	rows, err := s.pool.Query(ctx, `SELECT id FROM cards WHERE id = ANY($1)`, cardIDs)
	if err != nil {
		return Deck{}, err
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return Deck{}, err
		}
		known[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Deck{}, err
	}
	if err := ValidateDeck(cardIDs, func(id string) bool { return known[id] }); err != nil {
		return Deck{}, err
	}

	d := Deck{ID: uuid.NewString(), OwnerID: ownerID, Name: name, CardIDs: append([]string{}, cardIDs...)}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Deck{}, err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, `INSERT INTO decks (id, owner_id, name) VALUES ($1, $2, $3)`, d.ID, d.OwnerID, d.Name); err != nil {
		return Deck{}, err
	}
	for i, cardID := range d.CardIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO deck_cards (deck_id, position, card_id) VALUES ($1, $2, $3)`, d.ID, i, cardID); err != nil {
			return Deck{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Deck{}, err
	}
	return d, nil
}
