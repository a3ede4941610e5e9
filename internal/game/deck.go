// internal/game/deck.go
package game

import (
	"math/rand"
	"time"

	"github.com/mirohitka8-blip/faraon-multiplayer/internal/models"
)

// HandSize is the number of cards dealt to each seat.
const HandSize = 5

// NewDeck builds the 32-card Faraon universe and returns it uniformly
// shuffled. Index 0 is the top of the draw pile. Fisher-Yates via
// rand.Shuffle; every permutation is equally likely.
func NewDeck() []models.Card {
	deck := make([]models.Card, 0, len(models.Suits)*len(models.Ranks))
	for _, suit := range models.Suits {
		for _, rank := range models.Ranks {
			deck = append(deck, models.Card{Rank: rank, Suit: suit})
		}
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}
