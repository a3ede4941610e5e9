// internal/game/events.go
package game

import (
	"github.com/mirohitka8-blip/faraon-multiplayer/internal/models"
)

// GameEventType is an enum-like type for broadcasting game actions.
type GameEventType string

const (
	EventGameStart  GameEventType = "game_start"
	EventGameUpdate GameEventType = "game_update"
	EventGameOver   GameEventType = "game_over"
	// EventChooseSuit is unicast to the queen's owner: they must name a suit
	// before the turn moves on.
	EventChooseSuit GameEventType = "choose_suit"
)

// Effect tags attached to a game_update so clients can animate the play.
const (
	TagBurn        = "burn"
	TagChooseSuit  = "choose_suit"
	TagAceDecision = "ace_decision"
	TagSevenStack  = "seven_stack"
	TagGreenJack   = "green_jack"
	TagSuitChosen  = "suit_chosen"
	TagDraw        = "draw"
	TagStand       = "stand"
)

// GameEvent is the wire shape for everything the engine pushes at clients.
// game_start and game_update carry the full room snapshot; game_over names
// the winner; choose_suit carries only its type.
type GameEvent struct {
	Type GameEventType `json:"type"`

	Hands     map[string][]models.Card `json:"hands,omitempty"`
	TableCard *models.Card             `json:"tableCard,omitempty"`
	Turn      string                   `json:"turn,omitempty"`
	Order     []string                 `json:"order,omitempty"`
	DeckSize  int                      `json:"deckSize"`

	ForcedSuit  string `json:"forcedSuit,omitempty"`
	PendingDraw int    `json:"pendingDraw,omitempty"`
	SkipCount   int    `json:"skipCount,omitempty"`
	Effect      string `json:"effect,omitempty"`

	Winner string `json:"winner,omitempty"`
}

// Snapshot builds the full-room view of the current state with no effect
// tag. The owning room uses it for the game_start broadcast.
func (g *Game) Snapshot(typ GameEventType) GameEvent {
	return g.snapshot(typ, "")
}

// snapshot builds the game_update view of the current state. Broadcasts are
// read-only snapshots taken after a mutation completes.
func (g *Game) snapshot(typ GameEventType, tag string) GameEvent {
	hands := make(map[string][]models.Card, len(g.Hands))
	for id, hand := range g.Hands {
		cp := make([]models.Card, len(hand))
		copy(cp, hand)
		hands[id.String()] = cp
	}
	order := make([]string, len(g.Order))
	for i, id := range g.Order {
		order[i] = id.String()
	}
	table := g.TableCard
	return GameEvent{
		Type:        typ,
		Hands:       hands,
		TableCard:   &table,
		Turn:        g.CurrentPlayer().String(),
		Order:       order,
		DeckSize:    len(g.Deck),
		ForcedSuit:  g.Effect.ForcedSuit(),
		PendingDraw: g.Effect.PendingDraw(),
		SkipCount:   g.Effect.SkipCount(),
		Effect:      tag,
	}
}
