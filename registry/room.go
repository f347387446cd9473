package registry

import (
	"context"
	"encoding/json"
	"log/slog"

	"card-battle-server/game"
	"card-battle-server/matcherrors"
	"card-battle-server/wsutil"
)

// OpponentDisconnectedMsg tells the remaining player that the other side left.
type OpponentDisconnectedMsg struct {
	Type string `json:"type"`
}

type request struct {
	action game.Action
	leave  string
}

// Room owns one session and applies its actions one at a time on a single goroutine.
type Room struct {
	ID string

	session *game.Session
	send    map[string]chan []byte
	actions chan request
	done    chan struct{}
	reason  string

	// OnClose runs on the room goroutine after the loop exits.
	OnClose func(r *Room, reason string)
}

// NewRoom wraps a playing session. hostSend and guestSend are the outbound
// channels of the two connections; buffer sizes the action queue.
func NewRoom(s *game.Session, hostSend, guestSend chan []byte, buffer int) *Room {
	if buffer <= 0 {
		buffer = 1
	}
	return &Room{
		ID:      s.ID,
		session: s,
		send: map[string]chan []byte{
			s.HostID():  hostSend,
			s.GuestID(): guestSend,
		},
		actions: make(chan request, buffer),
		done:    make(chan struct{}),
	}
}

// Players returns the host and guest ids.
func (r *Room) Players() (host, guest string) {
	return r.session.HostID(), r.session.GuestID()
}

// Done is closed once the room stops accepting actions.
func (r *Room) Done() <-chan struct{} { return r.done }

// Submit queues a game action. It blocks while the queue is full and fails
// with ErrRoomClosed once the room has stopped.
func (r *Room) Submit(a game.Action) error {
	return r.enqueue(request{action: a})
}

// Leave reports that playerID disconnected or forfeited. The room closes and
// the other player is told.
func (r *Room) Leave(playerID string) error {
	return r.enqueue(request{leave: playerID})
}

func (r *Room) enqueue(req request) error {
	select {
	case <-r.done:
		return matcherrors.ErrRoomClosed
	default:
	}
	select {
	case r.actions <- req:
		return nil
	case <-r.done:
		return matcherrors.ErrRoomClosed
	}
}

// Run announces the game and then processes actions until the game ends, a
// player leaves or ctx is cancelled.
func (r *Room) Run(ctx context.Context) {
	defer func() {
		close(r.done)
		slog.Info("room closed", "tag", "room", "game", r.ID, "reason", r.reason)
		if r.OnClose != nil {
			r.OnClose(r, r.reason)
		}
	}()

	r.deliver("", r.session.StartEvents())

	for {
		select {
		case <-ctx.Done():
			r.reason = "shutdown"
			return
		case req := <-r.actions:
			if req.leave != "" {
				if r.handleLeave(req.leave) {
					return
				}
				continue
			}
			r.deliver(req.action.PlayerID, r.session.Apply(req.action))
			if r.session.Status() == game.StatusFinished {
				r.reason = "finished"
				return
			}
		}
	}
}

// handleLeave reports whether the room should close. Leaves from ids that
// are not seated here are ignored.
func (r *Room) handleLeave(playerID string) bool {
	opp, err := r.session.Opponent(playerID)
	if err != nil {
		slog.Warn("leave from unknown player", "tag", "room", "game", r.ID, "player", playerID)
		return false
	}
	r.reason = "player_left"
	slog.Info("player left", "tag", "room", "game", r.ID, "player", playerID)
	data, _ := json.Marshal(OpponentDisconnectedMsg{Type: "opponent_disconnected"})
	wsutil.SafeSend(r.send[opp], data)
	return true
}

// deliver routes each event to its addressee. sender is the acting player.
func (r *Room) deliver(sender string, events []game.Event) {
	host, guest := r.Players()
	for _, ev := range events {
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			slog.Error("marshaling event", "tag", "room", "game", r.ID, "err", err)
			continue
		}
		switch ev.To {
		case game.ToSender:
			wsutil.SafeSend(r.send[sender], data)
		case game.ToHost:
			wsutil.SafeSend(r.send[host], data)
		case game.ToGuest:
			wsutil.SafeSend(r.send[guest], data)
		case game.ToBoth:
			wsutil.SafeSend(r.send[host], data)
			wsutil.SafeSend(r.send[guest], data)
		}
	}
}
