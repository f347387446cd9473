package game

// ElementType is one of the 18 fixed elemental types a card can have.
type ElementType string

const (
	Normal   ElementType = "normal"
	Fire     ElementType = "fire"
	Water    ElementType = "water"
	Grass    ElementType = "grass"
	Electric ElementType = "electric"
	Ice      ElementType = "ice"
	Fighting ElementType = "fighting"
	Poison   ElementType = "poison"
	Ground   ElementType = "ground"
	Flying   ElementType = "flying"
	Psychic  ElementType = "psychic"
	Bug      ElementType = "bug"
	Rock     ElementType = "rock"
	Ghost    ElementType = "ghost"
	Dragon   ElementType = "dragon"
	Dark     ElementType = "dark"
	Steel    ElementType = "steel"
	Fairy    ElementType = "fairy"
)

// AllTypes lists every elemental type in catalog order.
var AllTypes = []ElementType{
	Normal, Fire, Water, Grass, Electric, Ice, Fighting, Poison, Ground,
	Flying, Psychic, Bug, Rock, Ghost, Dragon, Dark, Steel, Fairy,
}

// Valid reports whether t is one of the 18 known types.
func (t ElementType) Valid() bool {
	_, ok := weaknesses[t]
	return ok
}

const (
	// DeckSize is the exact number of cards a deck must hold.
	DeckSize = 20
	// MaxHandSize is the hand limit; drawing stops here.
	MaxHandSize = 5
	// WinningScore is the number of defeated units that ends the game.
	WinningScore = 3
)

// Card is an immutable card definition supplied by the deck store.
type Card struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	PokedexNumber int         `json:"pokedexNumber"`
	Type          ElementType `json:"type"`
	HP            int         `json:"hp"`
	Attack        int         `json:"attack"`
	Defense       int         `json:"defense"`
	ImageURL      string      `json:"imageUrl"`
}

// Unit is a card placed on the board with its live HP.
type Unit struct {
	Card
	CurrentHP int `json:"currentHp"`
}

// NewUnit puts a card on the board at full HP.
func NewUnit(c Card) Unit {
	return Unit{Card: c, CurrentHP: c.HP}
}
