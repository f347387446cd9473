package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"card-battle-server/auth"
	"card-battle-server/game"
	"card-battle-server/matcherrors"
	"card-battle-server/storage"
	"card-battle-server/wsutil"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Used when the config leaves the read limit unset.
	defaultMaxMessageSize = 4096

	deckLookupTimeout = 5 * time.Second
)

// Client is a middleman between the websocket connection and the hub.
// ID is the player id used by matchmaking and sessions.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
	ID   string

	mu     sync.Mutex
	userID string
	name   string
}

// UserID returns the authenticated account id, or "" before auth.
func (c *Client) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Name returns the display name taken from the token.
func (c *Client) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// ReadPump pumps messages from the websocket connection to the hub.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	limit := c.Hub.Config.MaxMessageBytes
	if limit <= 0 {
		limit = defaultMaxMessageSize
	}
	c.Conn.SetReadLimit(limit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "tag", "ws", "client", c.ID, "err", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	if envelope.Type == "auth" {
		c.handleAuth(envelope.Raw)
		return
	}
	if c.UserID() == "" {
		c.sendError("Please authenticate first.")
		return
	}

	switch envelope.Type {
	case "create_lobby":
		c.handleCreateLobby(envelope.Raw)
	case "join_lobby":
		c.handleJoinLobby(envelope.Raw)
	case "find_match":
		c.handleFindMatch(envelope.Raw)
	case "leave":
		c.handleLeave()
	case "draw":
		c.submit(game.Action{Kind: game.ActionDraw, PlayerID: c.ID})
	case "play":
		c.handlePlay(envelope.Raw)
	case "attack":
		c.submit(game.Action{Kind: game.ActionAttack, PlayerID: c.ID})
	default:
		c.sendError("Unknown message type: " + envelope.Type)
	}
}

func (c *Client) handleAuth(raw json.RawMessage) {
	if c.UserID() != "" {
		c.sendError("Already authenticated.")
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Token == "" {
		c.sendError("Invalid auth message.")
		return
	}
	if c.Hub.Auth == nil || !c.Hub.Auth.Configured() {
		c.sendError("Server auth not configured.")
		return
	}
	claims, err := c.Hub.Auth.Validate(msg.Token)
	if err != nil {
		slog.Info("token rejected", "tag", "ws", "client", c.ID, "err", err)
		c.sendError("Invalid or expired token.")
		return
	}

	c.mu.Lock()
	c.userID = auth.UserIDFromClaims(claims)
	c.name = auth.DisplayNameFromClaims(claims)
	name := c.name
	c.mu.Unlock()

	c.sendJSON(AuthenticatedMsg{Type: "authenticated", PlayerID: c.ID, Name: name})
}

func (c *Client) handleCreateLobby(raw json.RawMessage) {
	var msg CreateLobbyMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid create_lobby message.")
		return
	}
	if c.inGame() {
		c.sendError(errorMessage(matcherrors.ErrAlreadyInGame))
		return
	}
	deck, ok := c.loadDeck(msg.DeckID)
	if !ok {
		return
	}
	lobbyID, err := c.Hub.Matchmaker.CreateLobby(c.ID, c.UserID(), deck)
	if err != nil {
		c.sendError(errorMessage(err))
		return
	}
	c.sendJSON(LobbyCreatedMsg{Type: "lobby_created", LobbyID: lobbyID})
}

func (c *Client) handleJoinLobby(raw json.RawMessage) {
	var msg JoinLobbyMsg
	if err := json.Unmarshal(raw, &msg); err != nil || msg.LobbyID == "" {
		c.sendError("Invalid join_lobby message.")
		return
	}
	if c.inGame() {
		c.sendError(errorMessage(matcherrors.ErrAlreadyInGame))
		return
	}
	deck, ok := c.loadDeck(msg.DeckID)
	if !ok {
		return
	}
	s, err := c.Hub.Matchmaker.JoinLobby(msg.LobbyID, c.ID, c.UserID(), deck)
	if err != nil {
		c.sendError(errorMessage(err))
		return
	}
	c.Hub.startMatch(s)
}

func (c *Client) handleFindMatch(raw json.RawMessage) {
	var msg FindMatchMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid find_match message.")
		return
	}
	if c.inGame() {
		c.sendError(errorMessage(matcherrors.ErrAlreadyInGame))
		return
	}
	deck, ok := c.loadDeck(msg.DeckID)
	if !ok {
		return
	}
	s, lobbyID, err := c.Hub.Matchmaker.FindMatch(c.ID, c.UserID(), deck)
	if err != nil {
		c.sendError(errorMessage(err))
		return
	}
	if s == nil {
		c.sendJSON(WaitingForMatchMsg{Type: "waiting_for_match", LobbyID: lobbyID})
		return
	}
	c.Hub.startMatch(s)
}

func (c *Client) handleLeave() {
	if room, ok := c.Hub.Rooms.RoomFor(c.ID); ok {
		if err := room.Leave(c.ID); err != nil {
			c.sendError(errorMessage(err))
			return
		}
		c.sendJSON(LeftMsg{Type: "left"})
		return
	}
	if c.Hub.Matchmaker.Leave(c.ID) {
		c.sendJSON(LeftMsg{Type: "left"})
		return
	}
	c.sendError("You are not in a lobby or game.")
}

func (c *Client) handlePlay(raw json.RawMessage) {
	msg := PlayMsg{HandIndex: -1}
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid play message.")
		return
	}
	c.submit(game.Action{Kind: game.ActionPlay, PlayerID: c.ID, HandIndex: msg.HandIndex})
}

// submit forwards an in-game action to the client's room.
func (c *Client) submit(a game.Action) {
	room, ok := c.Hub.Rooms.RoomFor(c.ID)
	if !ok {
		c.sendError("You are not in a game.")
		return
	}
	if err := room.Submit(a); err != nil {
		c.sendError(errorMessage(err))
	}
}

func (c *Client) inGame() bool {
	_, ok := c.Hub.Rooms.RoomFor(c.ID)
	return ok
}

// loadDeck resolves a deck id for this client. On failure it has already
// told the client why.
func (c *Client) loadDeck(deckID string) ([]game.Card, bool) {
	if deckID == "" {
		c.sendError("A deck is required.")
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), deckLookupTimeout)
	defer cancel()
	deck, err := c.Hub.Decks.GetDeck(ctx, deckID, c.UserID())
	if err != nil {
		if !errors.Is(err, storage.ErrDeckNotFound) && !errors.Is(err, storage.ErrWrongOwner) {
			slog.Error("loading deck", "tag", "ws", "client", c.ID, "deck", deckID, "err", err)
		}
		c.sendError(errorMessage(err))
		return nil, false
	}
	return deck, true
}

func (c *Client) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshaling message", "tag", "ws", "err", err)
		return
	}
	wsutil.SafeSend(c.Send, data)
}

func (c *Client) sendError(message string) {
	c.sendJSON(ErrorMsg{Type: "error", Message: message})
}

var transportMessages = map[error]string{
	matcherrors.ErrLobbyNotFound:   "Lobby not found.",
	matcherrors.ErrOwnLobby:        "You cannot join your own lobby.",
	matcherrors.ErrTooManyLobbies:  "Too many open lobbies. Try again later.",
	matcherrors.ErrAlreadyQueued:   "You are already waiting for a match.",
	matcherrors.ErrAlreadyInGame:   "You are already in a game.",
	matcherrors.ErrSessionNotFound: "The game is over.",
	matcherrors.ErrRoomClosed:      "The game is over.",
	storage.ErrDeckNotFound:        "Deck not found.",
	storage.ErrWrongOwner:          "You cannot use that deck.",
	storage.ErrWrongSize:           "A deck must contain exactly 20 cards.",
	storage.ErrUnknownCard:         "The deck contains an unknown card.",
}

// errorMessage maps transport, storage and game errors to user-facing text.
func errorMessage(err error) string {
	for sentinel, msg := range transportMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return game.ErrorMessage(err)
}
