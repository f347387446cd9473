package game

import "errors"

// Validation errors returned by session and player operations. None of them
// end the session; a failed action leaves all state unchanged.
var (
	ErrPlayerNotFound          = errors.New("player not found")
	ErrGameNotStarted          = errors.New("game is not in progress")
	ErrNotYourTurn             = errors.New("not your turn")
	ErrInvalidIndex            = errors.New("invalid hand index")
	ErrAlreadyHasActiveUnit    = errors.New("already has an active unit")
	ErrNoActiveUnit            = errors.New("no active unit")
	ErrAttackerHasNoActiveUnit = errors.New("attacker has no active unit")
	ErrDefenderHasNoActiveUnit = errors.New("defender has no active unit")
	ErrAlreadyFull             = errors.New("session already has two players")
	ErrInvalidDeck             = errors.New("invalid deck")
	ErrDuplicatePlayer         = errors.New("player is already seated")
)

var errorMessages = map[error]string{
	ErrPlayerNotFound:          "You are not a player in this game.",
	ErrGameNotStarted:          "The game is not in progress.",
	ErrNotYourTurn:             "It is not your turn.",
	ErrInvalidIndex:            "Invalid card index.",
	ErrAlreadyHasActiveUnit:    "You already have an active card on the board.",
	ErrNoActiveUnit:            "There is no active card to attack.",
	ErrAttackerHasNoActiveUnit: "You need an active card to attack.",
	ErrDefenderHasNoActiveUnit: "Your opponent has no active card to attack.",
	ErrAlreadyFull:             "This game is already full.",
	ErrInvalidDeck:             "A deck must contain exactly 20 cards.",
	ErrDuplicatePlayer:         "You cannot play against yourself.",
}

// ErrorMessage returns the short user-facing text for err.
func ErrorMessage(err error) string {
	for sentinel, msg := range errorMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return "Something went wrong."
}
