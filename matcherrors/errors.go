package matcherrors

import "errors"

// Lobby/registry sentinel errors. Shared by matchmaking, registry and ws
// to avoid circular imports.
var (
	ErrLobbyNotFound   = errors.New("lobby not found")
	ErrOwnLobby        = errors.New("cannot join your own lobby")
	ErrTooManyLobbies  = errors.New("too many open lobbies")
	ErrAlreadyQueued   = errors.New("already waiting for a match")
	ErrAlreadyInGame   = errors.New("already in a game")
	ErrSessionNotFound = errors.New("session not found")
	ErrRoomClosed      = errors.New("room closed")
)
