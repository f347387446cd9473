package game

import (
	"errors"
	"reflect"
	"testing"
)

func TestDraw_FillsHandToFive(t *testing.T) {
	p := NewPlayerState("p", makeCards("fire", Fire, 60, 50, 30, 20))

	if n := p.Draw(); n != 5 {
		t.Fatalf("expected to draw 5, drew %d", n)
	}
	if p.HandSize() != 5 || p.DrawPileSize() != 15 {
		t.Errorf("expected hand=5 deck=15, got hand=%d deck=%d", p.HandSize(), p.DrawPileSize())
	}
	if hand := p.Hand(); hand[0].ID != "fire-0" || hand[4].ID != "fire-4" {
		t.Errorf("expected cards drawn from the front of the pile, got %s..%s", hand[0].ID, hand[4].ID)
	}
}

func TestDraw_NoOpWhenHandFull(t *testing.T) {
	p := NewPlayerState("p", makeCards("fire", Fire, 60, 50, 30, 20))
	p.Draw()

	if n := p.Draw(); n != 0 {
		t.Errorf("expected no draw on a full hand, drew %d", n)
	}
	if p.DrawPileSize() != 15 {
		t.Errorf("expected deck untouched at 15, got %d", p.DrawPileSize())
	}
}

func TestDraw_StopsWhenPileEmpty(t *testing.T) {
	p := BuildPlayer("p").
		WithDrawPile(makeCards("fire", Fire, 60, 50, 30, 2)...).
		WithHand(makeCards("h", Fire, 60, 50, 30, 1)...).
		Build()

	if n := p.Draw(); n != 2 {
		t.Errorf("expected to draw the 2 remaining cards, drew %d", n)
	}
	if p.HandSize() != 3 || p.DrawPileSize() != 0 {
		t.Errorf("expected hand=3 deck=0, got hand=%d deck=%d", p.HandSize(), p.DrawPileSize())
	}
	if n := p.Draw(); n != 0 {
		t.Errorf("expected empty pile draw to be a no-op, drew %d", n)
	}
}

func TestPlay_InstallsActiveUnitAndKeepsOrder(t *testing.T) {
	p := NewPlayerState("p", makeCards("fire", Fire, 60, 50, 30, 20))
	p.Draw()

	card, err := p.Play(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.ID != "fire-2" {
		t.Errorf("expected fire-2 played, got %s", card.ID)
	}
	u, ok := p.ActiveUnit()
	if !ok {
		t.Fatal("expected an active unit")
	}
	if u.CurrentHP != 60 {
		t.Errorf("expected currentHp=60, got %d", u.CurrentHP)
	}

	var ids []string
	for _, c := range p.Hand() {
		ids = append(ids, c.ID)
	}
	want := []string{"fire-0", "fire-1", "fire-3", "fire-4"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("expected hand %v, got %v", want, ids)
	}
}

func TestPlay_Errors(t *testing.T) {
	p := NewPlayerState("p", makeCards("fire", Fire, 60, 50, 30, 20))
	p.Draw()

	for _, idx := range []int{-1, 5, 99} {
		if _, err := p.Play(idx); !errors.Is(err, ErrInvalidIndex) {
			t.Errorf("Play(%d): expected ErrInvalidIndex, got %v", idx, err)
		}
	}

	if _, err := p.Play(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := p.Snapshot()
	if _, err := p.Play(0); !errors.Is(err, ErrAlreadyHasActiveUnit) {
		t.Errorf("expected ErrAlreadyHasActiveUnit, got %v", err)
	}
	if !reflect.DeepEqual(before, p.Snapshot()) {
		t.Error("failed play must not change state")
	}
}

func TestPlay_InvalidIndexCheckedFirst(t *testing.T) {
	p := BuildPlayer("p").WithActive(NewUnit(Card{Name: "x", HP: 10})).Build()
	if _, err := p.Play(0); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("expected ErrInvalidIndex on empty hand, got %v", err)
	}
}

func TestReceiveAttack(t *testing.T) {
	attacker := NewUnit(Card{Name: "Squirt", Type: Water, HP: 50, Attack: 50})
	p := BuildPlayer("p").WithActive(NewUnit(Card{Name: "Char", Type: Fire, HP: 100, Defense: 30})).Build()

	out, err := p.ReceiveAttack(attacker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Damage != 40 || out.Defeated || out.Remaining != 60 {
		t.Errorf("expected 40 damage leaving 60 HP, got %+v", out)
	}
	u, _ := p.ActiveUnit()
	if u.CurrentHP != 60 {
		t.Errorf("expected currentHp=60, got %d", u.CurrentHP)
	}
}

func TestReceiveAttack_DefeatClearsUnit(t *testing.T) {
	attacker := NewUnit(Card{Type: Water, Attack: 50})
	p := BuildPlayer("p").WithActive(Unit{Card: Card{Type: Fire, HP: 100, Defense: 30}, CurrentHP: 40}).Build()

	out, err := p.ReceiveAttack(attacker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Defeated {
		t.Error("expected unit at exactly 0 HP to be defeated")
	}
	if _, ok := p.ActiveUnit(); ok {
		t.Error("defeated unit should leave the board")
	}
	if p.Score() != 0 {
		t.Error("receiving an attack must not change the defender's score")
	}
}

func TestReceiveAttack_NoActiveUnit(t *testing.T) {
	p := NewPlayerState("p", nil)
	if _, err := p.ReceiveAttack(NewUnit(Card{Attack: 10})); !errors.Is(err, ErrNoActiveUnit) {
		t.Errorf("expected ErrNoActiveUnit, got %v", err)
	}
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	p := NewPlayerState("p", makeCards("fire", Fire, 60, 50, 30, 20))
	p.Draw()
	p.Play(0)
	snap := p.Snapshot()

	snap.Hand[0].Name = "changed"
	snap.Active.CurrentHP = 1
	if p.Hand()[0].Name == "changed" {
		t.Error("snapshot hand aliases player hand")
	}
	if u, _ := p.ActiveUnit(); u.CurrentHP == 1 {
		t.Error("snapshot unit aliases player unit")
	}
}

func TestBuildPlayer_ClampsHandAndScore(t *testing.T) {
	p := BuildPlayer("p").
		WithHand(makeCards("h", Fire, 10, 10, 10, 8)...).
		WithScore(7).
		Build()
	if p.HandSize() != MaxHandSize {
		t.Errorf("expected hand clamped to %d, got %d", MaxHandSize, p.HandSize())
	}
	if p.Score() != WinningScore {
		t.Errorf("expected score clamped to %d, got %d", WinningScore, p.Score())
	}
}
