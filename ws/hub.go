package ws

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"card-battle-server/config"
	"card-battle-server/game"
	"card-battle-server/registry"
	"card-battle-server/storage"
)

// MatchmakerInterface defines what the Hub needs from the Matchmaker.
type MatchmakerInterface interface {
	CreateLobby(hostID, hostUserID string, deck []game.Card) (string, error)
	JoinLobby(lobbyID, guestID, guestUserID string, deck []game.Card) (*game.Session, error)
	FindMatch(playerID, userID string, deck []game.Card) (*game.Session, string, error)
	Leave(playerID string) bool
}

// TokenValidator checks the token sent in the auth message.
type TokenValidator interface {
	Configured() bool
	Validate(token string) (jwt.MapClaims, error)
}

// Hub maintains the set of active clients and routes messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client

	Register   chan *Client
	Unregister chan *Client
	Matchmaker MatchmakerInterface
	Rooms      *registry.Registry
	Decks      storage.DeckStore
	Auth       TokenValidator
	Config     *config.Config

	upgrader websocket.Upgrader
}

// NewHub creates a new Hub.
func NewHub(cfg *config.Config, mm MatchmakerInterface, rooms *registry.Registry, decks storage.DeckStore, validator TokenValidator) *Hub {
	h := &Hub{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Matchmaker: mm,
		Rooms:      rooms,
		Decks:      decks,
		Auth:       validator,
		Config:     cfg,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin allows any origin when none are configured. Requests without
// an Origin header come from non-browser clients and are accepted.
func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.Config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(h.Config.AllowedOrigins, origin)
}

// Run starts the hub's main loop. Should be run as a goroutine.
// When ctx is cancelled (e.g. on server shutdown), Run returns and no longer accepts new registrations.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received, stopping", "tag", "ws")
			return
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client.ID] = client
			n := len(h.clients)
			h.mu.Unlock()
			slog.Info("client connected", "tag", "ws", "client", client.ID, "total", n)

		case client := <-h.Unregister:
			h.mu.Lock()
			_, ok := h.clients[client.ID]
			if ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			if !ok {
				continue
			}
			slog.Info("client disconnected", "tag", "ws", "client", client.ID, "total", n)
			h.release(client.ID)
		}
	}
}

// release cancels the player's lobby and ends any game they are in.
func (h *Hub) release(playerID string) {
	if h.Matchmaker.Leave(playerID) {
		slog.Debug("lobby cancelled on disconnect", "tag", "ws", "client", playerID)
	}
	if room, ok := h.Rooms.RoomFor(playerID); ok {
		if err := room.Leave(playerID); err != nil {
			slog.Debug("room already closed", "tag", "ws", "game", room.ID, "err", err)
		}
	}
}

// client returns the connected client with the given id.
func (h *Hub) client(id string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}

// startMatch tells both players about the match and hands the session to a room.
func (h *Hub) startMatch(s *game.Session) {
	host := h.client(s.HostID())
	guest := h.client(s.GuestID())
	if host == nil || guest == nil {
		slog.Warn("player left before match start", "tag", "ws", "game", s.ID)
		for _, c := range []*Client{host, guest} {
			if c != nil {
				c.sendError("Your opponent left before the game started.")
			}
		}
		return
	}

	for _, pair := range [][2]*Client{{host, guest}, {guest, host}} {
		self, opp := pair[0], pair[1]
		self.sendJSON(MatchFoundMsg{
			Type:         "match_found",
			GameID:       s.ID,
			OpponentID:   opp.ID,
			OpponentName: opp.Name(),
			YourTurn:     s.Turn() == self.ID,
		})
	}

	if _, err := h.Rooms.Start(s, host.Send, guest.Send); err != nil {
		slog.Error("starting room", "tag", "ws", "game", s.ID, "err", err)
		host.sendError(errorMessage(err))
		guest.sendError(errorMessage(err))
		return
	}
	slog.Info("match started", "tag", "ws", "game", s.ID, "host", host.ID, "guest", guest.ID)

	// A player that disconnected while the room was being registered missed
	// the release in Run.
	for _, c := range []*Client{host, guest} {
		if h.client(c.ID) == nil {
			h.release(c.ID)
		}
	}
}

// ServeWS handles WebSocket upgrade requests and creates a new Client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "tag", "ws", "err", err)
		return
	}

	client := &Client{
		Hub:  h,
		Conn: conn,
		Send: make(chan []byte, 256),
		ID:   uuid.NewString(),
	}

	h.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
