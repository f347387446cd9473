package game

// PlayerState is one side's battle state: draw pile, hand, active unit and score.
// Every operation validates before it mutates, so a failed call changes nothing.
type PlayerState struct {
	id       string
	drawPile []Card
	hand     []Card
	active   *Unit
	score    int
}

// NewPlayerState seats a player with the given draw pile. The pile is used in
// the order given; shuffling is the session's job.
func NewPlayerState(id string, drawPile []Card) *PlayerState {
	pile := make([]Card, len(drawPile))
	copy(pile, drawPile)
	return &PlayerState{
		id:       id,
		drawPile: pile,
		hand:     make([]Card, 0, MaxHandSize),
	}
}

// ID returns the connection identifier the player is bound to.
func (p *PlayerState) ID() string { return p.id }

// Score returns the number of enemy units this player has defeated.
func (p *PlayerState) Score() int { return p.score }

// HandSize returns the number of cards in hand.
func (p *PlayerState) HandSize() int { return len(p.hand) }

// DrawPileSize returns the number of cards left to draw.
func (p *PlayerState) DrawPileSize() int { return len(p.drawPile) }

// Hand returns a copy of the cards in hand, in order.
func (p *PlayerState) Hand() []Card {
	out := make([]Card, len(p.hand))
	copy(out, p.hand)
	return out
}

// ActiveUnit returns the unit on the board, if any.
func (p *PlayerState) ActiveUnit() (Unit, bool) {
	if p.active == nil {
		return Unit{}, false
	}
	return *p.active, true
}

// Draw moves cards from the front of the draw pile into the hand until the
// hand holds MaxHandSize cards or the pile is empty. It never fails.
func (p *PlayerState) Draw() (drawn int) {
	for len(p.hand) < MaxHandSize && len(p.drawPile) > 0 {
		p.hand = append(p.hand, p.drawPile[0])
		p.drawPile = p.drawPile[1:]
		drawn++
	}
	return drawn
}

// Play installs the card at handIndex as the active unit at full HP.
// The remaining hand keeps its order.
func (p *PlayerState) Play(handIndex int) (Card, error) {
	if handIndex < 0 || handIndex >= len(p.hand) {
		return Card{}, ErrInvalidIndex
	}
	if p.active != nil {
		return Card{}, ErrAlreadyHasActiveUnit
	}
	card := p.hand[handIndex]
	hand := make([]Card, 0, MaxHandSize)
	hand = append(hand, p.hand[:handIndex]...)
	hand = append(hand, p.hand[handIndex+1:]...)
	p.hand = hand
	unit := NewUnit(card)
	p.active = &unit
	return card, nil
}

// AttackOutcome describes what an attack did to the defending unit.
type AttackOutcome struct {
	Damage   int
	Defeated bool
	// Remaining is the defender's HP after the hit; it may be negative.
	Remaining int
}

// ReceiveAttack applies the attacker's damage to this player's active unit.
// A unit whose HP drops to zero or below leaves the board. Scoring is the
// caller's responsibility.
func (p *PlayerState) ReceiveAttack(attacker Unit) (AttackOutcome, error) {
	if p.active == nil {
		return AttackOutcome{}, ErrNoActiveUnit
	}
	dmg := Damage(attacker.Card, p.active.Card)
	p.active.CurrentHP -= dmg
	out := AttackOutcome{Damage: dmg, Remaining: p.active.CurrentHP}
	if p.active.CurrentHP <= 0 {
		p.active = nil
		out.Defeated = true
	}
	return out, nil
}

func (p *PlayerState) addPoint() {
	if p.score < WinningScore {
		p.score++
	}
}

// PlayerSnapshot is a deep copy of a PlayerState, comparable with reflect.DeepEqual.
type PlayerSnapshot struct {
	ID       string
	DrawPile []Card
	Hand     []Card
	Active   *Unit
	Score    int
}

// Snapshot returns a deep copy of the player's state.
func (p *PlayerState) Snapshot() PlayerSnapshot {
	s := PlayerSnapshot{
		ID:       p.id,
		DrawPile: append([]Card{}, p.drawPile...),
		Hand:     p.Hand(),
		Score:    p.score,
	}
	if p.active != nil {
		u := *p.active
		s.Active = &u
	}
	return s
}

// PlayerBuilder constructs a PlayerState in an arbitrary mid-game position.
// It exists so tests can start from a known board without replaying actions.
type PlayerBuilder struct {
	p PlayerState
}

// BuildPlayer starts a builder for the player with the given id.
func BuildPlayer(id string) *PlayerBuilder {
	return &PlayerBuilder{p: PlayerState{id: id, hand: make([]Card, 0, MaxHandSize)}}
}

// WithDrawPile sets the draw pile.
func (b *PlayerBuilder) WithDrawPile(cards ...Card) *PlayerBuilder {
	b.p.drawPile = append([]Card{}, cards...)
	return b
}

// WithHand sets the hand. Cards beyond MaxHandSize are dropped.
func (b *PlayerBuilder) WithHand(cards ...Card) *PlayerBuilder {
	if len(cards) > MaxHandSize {
		cards = cards[:MaxHandSize]
	}
	b.p.hand = append(make([]Card, 0, MaxHandSize), cards...)
	return b
}

// WithActive places a unit on the board.
func (b *PlayerBuilder) WithActive(u Unit) *PlayerBuilder {
	b.p.active = &u
	return b
}

// WithScore sets the score, clamped to [0, WinningScore].
func (b *PlayerBuilder) WithScore(score int) *PlayerBuilder {
	b.p.score = min(max(score, 0), WinningScore)
	return b
}

// Build returns the constructed PlayerState.
func (b *PlayerBuilder) Build() *PlayerState {
	p := b.p
	return &p
}
