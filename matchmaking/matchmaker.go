package matchmaking

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"card-battle-server/game"
	"card-battle-server/matcherrors"
)

// Lobby is a host waiting for a guest. It owns a waiting session and is
// consumed by the first successful join.
type Lobby struct {
	ID     string
	HostID string
	// HostUserID is the account behind HostID; one account cannot play itself.
	HostUserID string
	CreatedAt  time.Time
	// Quick marks lobbies opened by FindMatch; only those are offered to other FindMatch callers.
	Quick bool

	session *game.Session
}

// Matchmaker pairs hosts with guests. All methods are safe for concurrent use.
type Matchmaker struct {
	mu         sync.Mutex
	lobbies    map[string]*Lobby
	byHost     map[string]string
	quick      []string
	maxLobbies int
	opts       []game.Option
	newID      func() string
}

// NewMatchmaker creates a Matchmaker holding at most maxLobbies open lobbies
// (0 means unlimited). opts are passed to every session it opens.
func NewMatchmaker(maxLobbies int, opts ...game.Option) *Matchmaker {
	return &Matchmaker{
		lobbies:    make(map[string]*Lobby),
		byHost:     make(map[string]string),
		maxLobbies: maxLobbies,
		opts:       opts,
		newID:      uuid.NewString,
	}
}

// CreateLobby opens a lobby for the connection hostID, owned by account
// hostUserID, and returns its id.
func (m *Matchmaker) CreateLobby(hostID, hostUserID string, hostDeck []game.Card) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, err := m.openLocked(hostID, hostUserID, hostDeck, false)
	if err != nil {
		return "", err
	}
	return l.ID, nil
}

func (m *Matchmaker) openLocked(hostID, hostUserID string, hostDeck []game.Card, quick bool) (*Lobby, error) {
	if _, ok := m.byHost[hostID]; ok {
		return nil, matcherrors.ErrAlreadyQueued
	}
	if m.maxLobbies > 0 && len(m.lobbies) >= m.maxLobbies {
		return nil, matcherrors.ErrTooManyLobbies
	}
	s, err := game.Open(m.newID(), game.Seat{PlayerID: hostID, Deck: hostDeck}, m.opts...)
	if err != nil {
		return nil, err
	}
	l := &Lobby{ID: m.newID(), HostID: hostID, HostUserID: hostUserID, CreatedAt: time.Now(), Quick: quick, session: s}
	m.lobbies[l.ID] = l
	m.byHost[hostID] = l.ID
	if quick {
		m.quick = append(m.quick, l.ID)
	}
	slog.Info("lobby opened", "tag", "matchmaking", "lobby", l.ID, "host", hostID, "quick", quick)
	return l, nil
}

// JoinLobby seats guestID in the lobby and returns the started session.
// The lobby is removed on success.
func (m *Matchmaker) JoinLobby(lobbyID, guestID, guestUserID string, guestDeck []game.Card) (*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lobbies[lobbyID]
	if !ok {
		return nil, matcherrors.ErrLobbyNotFound
	}
	return m.joinLocked(l, guestID, guestUserID, guestDeck)
}

// sameAccount reports whether two connections belong to one account.
// An empty user id never matches.
func sameAccount(a, b string) bool {
	return a != "" && a == b
}

func (m *Matchmaker) joinLocked(l *Lobby, guestID, guestUserID string, guestDeck []game.Card) (*game.Session, error) {
	if l.HostID == guestID || sameAccount(l.HostUserID, guestUserID) {
		return nil, matcherrors.ErrOwnLobby
	}
	if _, hosting := m.byHost[guestID]; hosting {
		return nil, matcherrors.ErrAlreadyQueued
	}
	if err := l.session.Join(game.Seat{PlayerID: guestID, Deck: guestDeck}); err != nil {
		if errors.Is(err, game.ErrAlreadyFull) {
			m.removeLocked(l.ID)
		}
		return nil, err
	}
	m.removeLocked(l.ID)
	slog.Info("lobby joined", "tag", "matchmaking", "lobby", l.ID, "game", l.session.ID, "host", l.HostID, "guest", guestID)
	return l.session, nil
}

// FindMatch joins the oldest open quick-match lobby hosted by someone else,
// or opens one for playerID. It returns the started session, or the id of
// the lobby playerID is now waiting in.
func (m *Matchmaker) FindMatch(playerID, userID string, deck []game.Card) (*game.Session, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, hosting := m.byHost[playerID]; hosting {
		return nil, "", matcherrors.ErrAlreadyQueued
	}
	for _, id := range m.quick {
		l := m.lobbies[id]
		if l == nil || l.HostID == playerID || sameAccount(l.HostUserID, userID) {
			continue
		}
		s, err := m.joinLocked(l, playerID, userID, deck)
		if err != nil {
			return nil, "", err
		}
		return s, "", nil
	}
	l, err := m.openLocked(playerID, userID, deck, true)
	if err != nil {
		return nil, "", err
	}
	return nil, l.ID, nil
}

// Leave closes the lobby hosted by playerID, if any.
func (m *Matchmaker) Leave(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byHost[playerID]
	if !ok {
		return false
	}
	m.removeLocked(id)
	slog.Info("lobby closed", "tag", "matchmaking", "lobby", id, "host", playerID)
	return true
}

// Cancel closes a lobby by id.
func (m *Matchmaker) Cancel(lobbyID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lobbies[lobbyID]; !ok {
		return false
	}
	m.removeLocked(lobbyID)
	return true
}

func (m *Matchmaker) removeLocked(lobbyID string) {
	l, ok := m.lobbies[lobbyID]
	if !ok {
		return
	}
	delete(m.lobbies, lobbyID)
	delete(m.byHost, l.HostID)
	if l.Quick {
		for i, id := range m.quick {
			if id == lobbyID {
				m.quick = append(m.quick[:i], m.quick[i+1:]...)
				break
			}
		}
	}
}

// Lobby returns a copy of the lobby's public fields.
func (m *Matchmaker) Lobby(lobbyID string) (Lobby, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lobbies[lobbyID]
	if !ok {
		return Lobby{}, false
	}
	return Lobby{ID: l.ID, HostID: l.HostID, HostUserID: l.HostUserID, CreatedAt: l.CreatedAt, Quick: l.Quick}, true
}

// Len returns the number of open lobbies.
func (m *Matchmaker) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lobbies)
}
