// internal/models/card.go
package models

// Card is an immutable (rank, suit) value. The game universe is exactly the
// 32 combinations of the ranks and suits below, each appearing once, so two
// cards are the same card iff they compare equal.
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// Ranks in a Faraon deck. "T" is ten.
var Ranks = []string{"7", "8", "9", "T", "J", "Q", "K", "A"}

// Suits: hearts, diamonds, clubs, spades.
var Suits = []string{"H", "D", "C", "S"}

// GreenJack is the jack of clubs: playable through any constraint and a
// universal canceller of pending draw/stop effects.
var GreenJack = Card{Rank: "J", Suit: "C"}

// IsGreenJack reports whether c is the jack of clubs.
func (c Card) IsGreenJack() bool {
	return c == GreenJack
}

// Valid reports whether c is one of the 32 cards of the Faraon universe.
func (c Card) Valid() bool {
	rankOK := false
	for _, r := range Ranks {
		if c.Rank == r {
			rankOK = true
			break
		}
	}
	if !rankOK {
		return false
	}
	for _, s := range Suits {
		if c.Suit == s {
			return true
		}
	}
	return false
}

func (c Card) String() string {
	return c.Rank + c.Suit
}
