package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-battle-server/game"
	"card-battle-server/storage"
)

type stubValidator struct{}

func (stubValidator) Validate(token string) (jwt.MapClaims, error) {
	if token == "bad" {
		return nil, errors.New("token is expired")
	}
	return jwt.MapClaims{"sub": token}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, []game.Card) {
	t.Helper()
	cards, err := storage.Catalog()
	require.NoError(t, err)
	h := NewHandler(storage.NewMemoryStore(cards), stubValidator{})
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv, cards
}

func do(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCards(t *testing.T) {
	srv, cards := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/cards", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var got []game.Card
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Len(t, got, len(cards))
	assert.Equal(t, cards[0].ID, got[0].ID)
}

func TestPreflight(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodOptions, srv.URL+"/decks", "", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestDecksRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodGet, srv.URL+"/decks", "", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodGet, srv.URL+"/decks", "bad", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodPost, srv.URL+"/decks", "", "{}").StatusCode)
}

func TestCreateAndListDecks(t *testing.T) {
	srv, cards := newTestServer(t)

	ids := make([]string, game.DeckSize)
	for i := range ids {
		ids[i] = cards[len(cards)-1-i].ID
	}
	body, _ := json.Marshal(CreateDeckRequest{Name: "  Late Game  ", CardIDs: ids})

	resp := do(t, http.MethodPost, srv.URL+"/decks", "misty", string(body))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created storage.Deck
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "Late Game", created.Name)
	assert.Equal(t, "misty", created.OwnerID)
	assert.NotEmpty(t, created.ID)

	resp = do(t, http.MethodGet, srv.URL+"/decks", "misty", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var decks []storage.Deck
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decks))
	require.NotEmpty(t, decks)
	assert.True(t, decks[0].Starter, "starter decks are listed first")
	assert.Equal(t, created.ID, decks[len(decks)-1].ID)

	// Other users do not see it.
	resp = do(t, http.MethodGet, srv.URL+"/decks", "brock", "")
	decks = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decks))
	for _, d := range decks {
		assert.NotEqual(t, created.ID, d.ID)
	}
}

func TestCreateDeckValidation(t *testing.T) {
	srv, cards := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", "{"},
		{"empty name", `{"name":"","cardIds":[]}`},
		{"too few cards", `{"name":"Tiny","cardIds":["` + cards[0].ID + `"]}`},
		{"unknown card", func() string {
			ids := make([]string, game.DeckSize)
			for i := range ids {
				ids[i] = cards[i].ID
			}
			ids[3] = "missingno"
			b, _ := json.Marshal(CreateDeckRequest{Name: "Glitch", CardIDs: ids})
			return string(b)
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+"/decks", "misty", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}
