package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"card-battle-server/auth"
	"card-battle-server/game"
	"card-battle-server/storage"
)

const maxDeckNameLength = 40

// TokenValidator is the subset of auth.Validator the handlers need.
type TokenValidator interface {
	Validate(token string) (jwt.MapClaims, error)
}

// Handler holds dependencies for API handlers.
type Handler struct {
	Store storage.DeckStore
	Auth  TokenValidator
}

// NewHandler creates a new API handler with the given dependencies.
func NewHandler(store storage.DeckStore, validator TokenValidator) *Handler {
	return &Handler{
		Store: store,
		Auth:  validator,
	}
}

// Routes mounts the API under a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(corsMiddleware)
	r.Get("/cards", h.Cards)
	r.Get("/decks", h.Decks)
	r.Post("/decks", h.CreateDeck)
	return r
}

// CORS sets CORS headers on the response. Call before writing body.
func CORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CORS(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractUserID validates the Authorization header and returns the user ID, or empty string on failure.
func (h *Handler) extractUserID(r *http.Request) string {
	if h.Auth == nil {
		return ""
	}
	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return ""
	}
	claims, err := h.Auth.Validate(token)
	if err != nil {
		slog.Debug("rejected bearer token", "tag", "api", "err", err)
		return ""
	}
	return auth.UserIDFromClaims(claims)
}

// Cards returns the full card catalog.
func (h *Handler) Cards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Store.ListCards(r.Context())
	if err != nil {
		slog.Error("ListCards", "tag", "api", "err", err)
		http.Error(w, "failed to load cards", http.StatusInternalServerError)
		return
	}
	if cards == nil {
		cards = []game.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}

// Decks returns the starter decks and the caller's own decks.
func (h *Handler) Decks(w http.ResponseWriter, r *http.Request) {
	userID := h.extractUserID(r)
	if userID == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}
	decks, err := h.Store.ListDecks(r.Context(), userID)
	if err != nil {
		slog.Error("ListDecks", "tag", "api", "user", userID, "err", err)
		http.Error(w, "failed to load decks", http.StatusInternalServerError)
		return
	}
	if decks == nil {
		decks = []storage.Deck{}
	}
	writeJSON(w, http.StatusOK, decks)
}

// CreateDeckRequest is the body of POST /api/decks.
type CreateDeckRequest struct {
	Name    string   `json:"name"`
	CardIDs []string `json:"cardIds"`
}

// CreateDeck stores a new deck for the caller.
func (h *Handler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	userID := h.extractUserID(r)
	if userID == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}

	var req CreateDeckRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Name) > maxDeckNameLength {
		http.Error(w, "name must be between 1 and 40 characters", http.StatusBadRequest)
		return
	}

	deck, err := h.Store.CreateDeck(r.Context(), userID, req.Name, req.CardIDs)
	switch {
	case errors.Is(err, storage.ErrWrongSize), errors.Is(err, storage.ErrUnknownCard):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		slog.Error("CreateDeck", "tag", "api", "user", userID, "err", err)
		http.Error(w, "failed to create deck", http.StatusInternalServerError)
		return
	}
	slog.Info("deck created", "tag", "api", "user", userID, "deck", deck.ID)
	writeJSON(w, http.StatusCreated, deck)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "tag", "api", "err", err)
	}
}
