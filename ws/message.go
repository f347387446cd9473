package ws

import "encoding/json"

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// AuthMsg must be the first message on a connection.
type AuthMsg struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// CreateLobbyMsg opens a lobby with one of the caller's decks.
type CreateLobbyMsg struct {
	Type   string `json:"type"`
	DeckID string `json:"deckId"`
}

// JoinLobbyMsg joins an open lobby by id.
type JoinLobbyMsg struct {
	Type    string `json:"type"`
	LobbyID string `json:"lobbyId"`
	DeckID  string `json:"deckId"`
}

// FindMatchMsg enters quick match.
type FindMatchMsg struct {
	Type   string `json:"type"`
	DeckID string `json:"deckId"`
}

// PlayMsg plays the card at HandIndex. A missing index decodes as -1.
type PlayMsg struct {
	Type      string `json:"type"`
	HandIndex int    `json:"handIndex"`
}

// --- Server-to-Client messages ---

// ErrorMsg is sent when a client action is invalid.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AuthenticatedMsg confirms the token and tells the client its player id.
type AuthenticatedMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// LobbyCreatedMsg returns the id a guest needs to join.
type LobbyCreatedMsg struct {
	Type    string `json:"type"`
	LobbyID string `json:"lobbyId"`
}

// WaitingForMatchMsg confirms the player is waiting in quick match.
type WaitingForMatchMsg struct {
	Type    string `json:"type"`
	LobbyID string `json:"lobbyId"`
}

// LeftMsg confirms a leave request.
type LeftMsg struct {
	Type string `json:"type"`
}

// MatchFoundMsg is sent to both players before the first state update.
type MatchFoundMsg struct {
	Type         string `json:"type"`
	GameID       string `json:"gameId"`
	OpponentID   string `json:"opponentId"`
	OpponentName string `json:"opponentName"`
	YourTurn     bool   `json:"yourTurn"`
}
