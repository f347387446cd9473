package game

import (
	"fmt"
	"math/rand"
	"time"
)

// Status is the lifecycle stage of a session.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Seat is a player joining a session together with the deck they bring.
type Seat struct {
	PlayerID string
	Deck     []Card
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithShuffler replaces the draw-pile shuffle. Tests pass a no-op to keep deck order.
func WithShuffler(fn func([]Card)) Option {
	return func(s *Session) { s.shuffle = fn }
}

// WithRand shuffles draw piles with r.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		s.shuffle = func(cards []Card) {
			r.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
		}
	}
}

// Session is one two-player match. It holds no goroutines and does no I/O;
// callers must serialize calls on the same session.
type Session struct {
	ID string

	host   *PlayerState
	guest  *PlayerState
	turn   string
	status Status
	winner string

	shuffle func([]Card)
}

// Open creates a session that only has its host and waits for a guest.
func Open(id string, host Seat, opts ...Option) (*Session, error) {
	s := &Session{ID: id, status: StatusWaiting}
	for _, opt := range opts {
		opt(s)
	}
	if s.shuffle == nil {
		WithRand(rand.New(rand.NewSource(time.Now().UnixNano())))(s)
	}
	pile, err := s.prepareDeck(host.Deck)
	if err != nil {
		return nil, err
	}
	s.host = NewPlayerState(host.PlayerID, pile)
	s.turn = host.PlayerID
	return s, nil
}

// Join seats the guest and starts the game. A session accepts exactly one guest.
func (s *Session) Join(guest Seat) error {
	if s.status != StatusWaiting {
		return ErrAlreadyFull
	}
	if guest.PlayerID == s.host.id {
		return ErrDuplicatePlayer
	}
	pile, err := s.prepareDeck(guest.Deck)
	if err != nil {
		return err
	}
	s.guest = NewPlayerState(guest.PlayerID, pile)
	s.status = StatusPlaying
	return nil
}

// NewSession creates a session with both players known; it starts in playing
// with the host holding the first turn.
func NewSession(id string, host, guest Seat, opts ...Option) (*Session, error) {
	s, err := Open(id, host, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Join(guest); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSessionFromState builds a playing session around existing player states.
// turnID must be one of the two player ids.
func NewSessionFromState(id string, host, guest *PlayerState, turnID string) *Session {
	return &Session{
		ID:     id,
		host:   host,
		guest:  guest,
		turn:   turnID,
		status: StatusPlaying,
	}
}

func (s *Session) prepareDeck(deck []Card) ([]Card, error) {
	if len(deck) != DeckSize {
		return nil, fmt.Errorf("%w: got %d cards, want %d", ErrInvalidDeck, len(deck), DeckSize)
	}
	pile := make([]Card, len(deck))
	copy(pile, deck)
	s.shuffle(pile)
	return pile, nil
}

// Status returns the session's lifecycle stage.
func (s *Session) Status() Status { return s.status }

// Turn returns the id of the player whose turn it is.
func (s *Session) Turn() string { return s.turn }

// Winner returns the winner's id once the session is finished.
func (s *Session) Winner() (string, bool) {
	return s.winner, s.status == StatusFinished
}

// HostID returns the first mover's id.
func (s *Session) HostID() string { return s.host.id }

// GuestID returns the second mover's id, or "" while waiting.
func (s *Session) GuestID() string {
	if s.guest == nil {
		return ""
	}
	return s.guest.id
}

// Opponent returns the id of playerID's opponent.
func (s *Session) Opponent(playerID string) (string, error) {
	_, opp, err := s.resolve(playerID)
	if err != nil {
		return "", err
	}
	if opp == nil {
		return "", nil
	}
	return opp.id, nil
}

// resolve returns the acting player and the other side. opp is nil while waiting.
func (s *Session) resolve(playerID string) (self, opp *PlayerState, err error) {
	switch {
	case s.host != nil && s.host.id == playerID:
		return s.host, s.guest, nil
	case s.guest != nil && s.guest.id == playerID:
		return s.guest, s.host, nil
	}
	return nil, nil, ErrPlayerNotFound
}

// DrawResult reports the hand after a draw.
type DrawResult struct {
	Drawn        int
	HandSize     int
	DrawPileSize int
}

// DrawCards fills playerID's hand up to MaxHandSize. Drawing is allowed on
// either player's turn.
func (s *Session) DrawCards(playerID string) (DrawResult, error) {
	if s.status != StatusPlaying {
		return DrawResult{}, ErrGameNotStarted
	}
	p, _, err := s.resolve(playerID)
	if err != nil {
		return DrawResult{}, err
	}
	n := p.Draw()
	return DrawResult{Drawn: n, HandSize: p.HandSize(), DrawPileSize: p.DrawPileSize()}, nil
}

// PlayCard moves the card at handIndex onto the board. It does not end the turn.
func (s *Session) PlayCard(playerID string, handIndex int) (Card, error) {
	if s.status != StatusPlaying {
		return Card{}, ErrGameNotStarted
	}
	p, _, err := s.resolve(playerID)
	if err != nil {
		return Card{}, err
	}
	if s.turn != playerID {
		return Card{}, ErrNotYourTurn
	}
	return p.Play(handIndex)
}

// AttackResult describes a resolved attack.
type AttackResult struct {
	Success        bool
	Message        string
	Attacker       Card
	Defender       Card
	Damage         int
	SuperEffective bool
	UnitDefeated   bool
	GameWon        bool
}

// Attack has playerID's active unit hit the opponent's active unit. A defeat
// scores a point; reaching WinningScore finishes the game without passing the
// turn. Any other successful attack passes the turn.
func (s *Session) Attack(playerID string) (AttackResult, error) {
	if s.status != StatusPlaying {
		return AttackResult{}, ErrGameNotStarted
	}
	attacker, defender, err := s.resolve(playerID)
	if err != nil {
		return AttackResult{}, err
	}
	if s.turn != playerID {
		return AttackResult{}, ErrNotYourTurn
	}
	atkUnit, ok := attacker.ActiveUnit()
	if !ok {
		return AttackResult{}, ErrAttackerHasNoActiveUnit
	}
	defUnit, ok := defender.ActiveUnit()
	if !ok {
		return AttackResult{}, ErrDefenderHasNoActiveUnit
	}

	outcome, err := defender.ReceiveAttack(atkUnit)
	if err != nil {
		return AttackResult{}, err
	}
	res := AttackResult{
		Success:        true,
		Attacker:       atkUnit.Card,
		Defender:       defUnit.Card,
		Damage:         outcome.Damage,
		SuperEffective: Multiplier(atkUnit.Type, defUnit.Type) == 2,
		UnitDefeated:   outcome.Defeated,
	}
	if outcome.Defeated {
		attacker.addPoint()
	}
	if outcome.Defeated && attacker.score >= WinningScore {
		s.status = StatusFinished
		s.winner = playerID
		res.GameWon = true
	} else {
		s.turn = defender.id
	}
	res.Message = attackMessage(res)
	return res, nil
}

func attackMessage(r AttackResult) string {
	msg := fmt.Sprintf("%s attacked %s for %d damage.", r.Attacker.Name, r.Defender.Name, r.Damage)
	if r.SuperEffective {
		msg += " It's super effective!"
	}
	if r.UnitDefeated {
		msg += fmt.Sprintf(" %s was defeated.", r.Defender.Name)
	}
	if r.GameWon {
		msg += " The game is over."
	}
	return msg
}

// SessionSnapshot is a deep copy of the whole session state.
type SessionSnapshot struct {
	Host   PlayerSnapshot
	Guest  *PlayerSnapshot
	Turn   string
	Status Status
	Winner string
}

// Snapshot returns a deep copy of the session state.
func (s *Session) Snapshot() SessionSnapshot {
	snap := SessionSnapshot{
		Host:   s.host.Snapshot(),
		Turn:   s.turn,
		Status: s.status,
		Winner: s.winner,
	}
	if s.guest != nil {
		g := s.guest.Snapshot()
		snap.Guest = &g
	}
	return snap
}
