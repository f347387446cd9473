package game

import (
	"fmt"
	"log/slog"
)

// Addressee says which connection(s) an event must be delivered to.
type Addressee int

const (
	// ToSender is the connection whose action produced the event.
	ToSender Addressee = iota
	ToHost
	ToGuest
	ToBoth
)

// String returns a short name for logs.
func (a Addressee) String() string {
	switch a {
	case ToSender:
		return "sender"
	case ToHost:
		return "host"
	case ToGuest:
		return "guest"
	case ToBoth:
		return "both"
	default:
		return "unknown"
	}
}

// Wire type names of the events a session produces.
const (
	TypeError       = "error"
	TypeStateUpdate = "state_update"
	TypeGameEnded   = "game_ended"
)

// Payload is one of ErrorEvent, StateUpdateEvent or GameEndedEvent.
type Payload interface {
	EventType() string
}

// ErrorEvent tells the sender why its action was rejected.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// EventType implements Payload.
func (ErrorEvent) EventType() string { return TypeError }

// StateUpdateEvent carries a message and the addressee's own projection.
type StateUpdateEvent struct {
	Type      string        `json:"type"`
	Message   string        `json:"message"`
	GameState GameStateView `json:"gameState"`
}

// EventType implements Payload.
func (StateUpdateEvent) EventType() string { return TypeStateUpdate }

// GameEndedEvent announces the winner to both players.
type GameEndedEvent struct {
	Type     string `json:"type"`
	WinnerID string `json:"winnerId"`
	Message  string `json:"message"`
}

// EventType implements Payload.
func (GameEndedEvent) EventType() string { return TypeGameEnded }

// Event is a payload with its addressee.
type Event struct {
	To      Addressee
	Payload Payload
}

// NewErrorEvent builds an error event for the sender of a failed action.
func NewErrorEvent(err error) Event {
	return Event{To: ToSender, Payload: ErrorEvent{Type: TypeError, Message: ErrorMessage(err)}}
}

// ActionKind enumerates the in-game actions a player can send.
type ActionKind int

const (
	ActionDraw ActionKind = iota
	ActionPlay
	ActionAttack
)

// String returns the wire name of the action.
func (k ActionKind) String() string {
	switch k {
	case ActionDraw:
		return "draw"
	case ActionPlay:
		return "play"
	case ActionAttack:
		return "attack"
	default:
		return "unknown"
	}
}

// Action is one player request addressed to a session.
type Action struct {
	Kind      ActionKind
	PlayerID  string
	HandIndex int
}

// Apply runs the action and returns the events to deliver. A rejected action
// yields a single ErrorEvent to the sender and leaves the session unchanged.
func (s *Session) Apply(a Action) []Event {
	var (
		events []Event
		err    error
	)
	switch a.Kind {
	case ActionDraw:
		events, err = s.applyDraw(a.PlayerID)
	case ActionPlay:
		events, err = s.applyPlay(a.PlayerID, a.HandIndex)
	case ActionAttack:
		events, err = s.applyAttack(a.PlayerID)
	default:
		err = fmt.Errorf("unknown action kind %d", a.Kind)
	}
	if err != nil {
		slog.Debug("action rejected", "tag", "game", "game", s.ID, "action", a.Kind.String(), "player", a.PlayerID, "err", err)
		return []Event{NewErrorEvent(err)}
	}
	return events
}

// StartEvents returns the state updates that announce a freshly started game.
func (s *Session) StartEvents() []Event {
	if s.status != StatusPlaying {
		return nil
	}
	return []Event{
		s.stateUpdate(s.host.id, "The battle begins. You move first."),
		s.stateUpdate(s.guest.id, "The battle begins. Your opponent moves first."),
	}
}

func (s *Session) applyDraw(playerID string) ([]Event, error) {
	res, err := s.DrawCards(playerID)
	if err != nil {
		return nil, err
	}
	opp, _ := s.Opponent(playerID)
	return []Event{
		s.stateUpdate(playerID, fmt.Sprintf("You drew %d card(s).", res.Drawn)),
		s.stateUpdate(opp, fmt.Sprintf("Your opponent drew %d card(s).", res.Drawn)),
	}, nil
}

func (s *Session) applyPlay(playerID string, handIndex int) ([]Event, error) {
	card, err := s.PlayCard(playerID, handIndex)
	if err != nil {
		return nil, err
	}
	opp, _ := s.Opponent(playerID)
	return []Event{
		s.stateUpdate(playerID, fmt.Sprintf("You played %s.", card.Name)),
		s.stateUpdate(opp, fmt.Sprintf("Your opponent played %s.", card.Name)),
	}, nil
}

func (s *Session) applyAttack(playerID string) ([]Event, error) {
	res, err := s.Attack(playerID)
	if err != nil {
		return nil, err
	}
	opp, _ := s.Opponent(playerID)
	events := []Event{
		s.stateUpdate(playerID, res.Message),
		s.stateUpdate(opp, res.Message),
	}
	if res.GameWon {
		events = append(events, Event{To: ToBoth, Payload: GameEndedEvent{
			Type:     TypeGameEnded,
			WinnerID: playerID,
			Message:  fmt.Sprintf("The winner defeated %d units and won the game.", WinningScore),
		}})
	}
	return events, nil
}

// stateUpdate builds a state update for playerID with a freshly computed view.
func (s *Session) stateUpdate(playerID, message string) Event {
	view, _ := s.StateFor(playerID)
	return Event{To: s.roleOf(playerID), Payload: StateUpdateEvent{
		Type:      TypeStateUpdate,
		Message:   message,
		GameState: view,
	}}
}

func (s *Session) roleOf(playerID string) Addressee {
	if s.guest != nil && s.guest.id == playerID {
		return ToGuest
	}
	return ToHost
}
