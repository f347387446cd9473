package game

// OwnBoard is the requesting player's side of the board, fully visible.
type OwnBoard struct {
	Hand       []Card `json:"hand"`
	HandCount  int    `json:"handCount"`
	ActiveUnit *Unit  `json:"activeUnit"`
	DeckCount  int    `json:"deckCount"`
	Score      int    `json:"score"`
}

// OpponentBoard is the other side as the requesting player may see it.
// The active unit is public; hand and draw pile are counts only.
type OpponentBoard struct {
	PlayerID   string `json:"playerId,omitempty"`
	ActiveUnit *Unit  `json:"activeUnit"`
	HandCount  int    `json:"handCount"`
	DeckCount  int    `json:"deckCount"`
	Score      int    `json:"score"`
}

// GameStateView is the per-player projection of a session.
type GameStateView struct {
	GameID        string        `json:"gameId"`
	PlayerID      string        `json:"playerId"`
	Status        Status        `json:"status"`
	Winner        string        `json:"winner,omitempty"`
	Turn          string        `json:"turn"`
	YourTurn      bool          `json:"yourTurn"`
	YourBoard     OwnBoard      `json:"yourBoard"`
	OpponentBoard OpponentBoard `json:"opponentBoard"`
}

// StateFor builds the view of the session for playerID. It is computed from
// the live state on every call.
func (s *Session) StateFor(playerID string) (GameStateView, error) {
	self, opp, err := s.resolve(playerID)
	if err != nil {
		return GameStateView{}, err
	}
	view := GameStateView{
		GameID:    s.ID,
		PlayerID:  playerID,
		Status:    s.status,
		Turn:      s.turn,
		YourTurn:  s.status == StatusPlaying && s.turn == playerID,
		YourBoard: buildOwnBoard(self),
	}
	if s.status == StatusFinished {
		view.Winner = s.winner
	}
	if opp != nil {
		view.OpponentBoard = buildOpponentBoard(opp)
	}
	return view, nil
}

func buildOwnBoard(p *PlayerState) OwnBoard {
	b := OwnBoard{
		Hand:      p.Hand(),
		HandCount: p.HandSize(),
		DeckCount: p.DrawPileSize(),
		Score:     p.Score(),
	}
	if u, ok := p.ActiveUnit(); ok {
		b.ActiveUnit = &u
	}
	return b
}

func buildOpponentBoard(p *PlayerState) OpponentBoard {
	b := OpponentBoard{
		PlayerID:  p.ID(),
		HandCount: p.HandSize(),
		DeckCount: p.DrawPileSize(),
		Score:     p.Score(),
	}
	if u, ok := p.ActiveUnit(); ok {
		b.ActiveUnit = &u
	}
	return b
}
