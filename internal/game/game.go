// internal/game/game.go
package game

import (
	"log"

	"github.com/google/uuid"

	"github.com/mirohitka8-blip/faraon-multiplayer/internal/models"
)

// Game holds the entire state for one started room. The room that owns the
// game serializes every call into it under its own lock, so the methods here
// assume exclusive access and never lock themselves.
//
// Invariant: deck ∪ hands ∪ {table card} is always the full 32-card universe,
// and TurnIndex always indexes a live seat in Order.
type Game struct {
	RoomCode string

	// Deck is the draw pile; index 0 is the top.
	Deck      []models.Card
	Hands     map[uuid.UUID][]models.Card
	TableCard models.Card

	// Order is the seating order frozen at deal time. It only shrinks, and
	// only when a seated player departs mid-game.
	Order     []uuid.UUID
	TurnIndex int

	Effect Effect
	Over   bool

	// BroadcastFn pushes an event to every member of the room. If nil, no
	// broadcast is done.
	BroadcastFn func(ev GameEvent)

	// BroadcastToPlayerFn pushes an event to a single player.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)

	// OnGameEnd is invoked once, just before the game_over broadcast, so the
	// owning room can detach the finished game.
	OnGameEnd func(winner uuid.UUID)
}

// New deals a fresh game for the given seats (the room's seating order at
// start). Each seat gets HandSize cards off the top of a shuffled deck, then
// one more card is popped as the initial table card.
func New(roomCode string, seats []uuid.UUID) *Game {
	g := &Game{
		RoomCode: roomCode,
		Deck:     NewDeck(),
		Hands:    make(map[uuid.UUID][]models.Card, len(seats)),
		Order:    append([]uuid.UUID(nil), seats...),
	}
	for _, id := range seats {
		hand := make([]models.Card, HandSize)
		copy(hand, g.Deck[:HandSize])
		g.Deck = g.Deck[HandSize:]
		g.Hands[id] = hand
	}
	g.TableCard = g.Deck[0]
	g.Deck = g.Deck[1:]
	return g
}

// CurrentPlayer returns the only player whose move requests are accepted.
func (g *Game) CurrentPlayer() uuid.UUID {
	if len(g.Order) == 0 {
		return uuid.Nil
	}
	return g.Order[g.TurnIndex]
}

// advanceTurn moves the turn n seats clockwise.
func (g *Game) advanceTurn(n int) {
	if len(g.Order) > 0 {
		g.TurnIndex = (g.TurnIndex + n) % len(g.Order)
	}
}

// PlayCards applies a play request. Out-of-turn, empty, or illegal plays are
// rejected silently with no state change, so a desynchronized client can
// simply retry. cards[0] alone carries the legality check; a multi-card
// bundle is a same-rank burn convenience.
func (g *Game) PlayCards(playerID uuid.UUID, cards []models.Card) {
	if g.Over || playerID != g.CurrentPlayer() || len(cards) == 0 {
		return
	}
	if !IsPlayable(cards[0], g.TableCard, g.Effect) {
		return
	}

	// Every named card must actually be in the requester's hand. A bundle
	// claiming a card the player does not hold (or naming one twice) is
	// rejected whole; partial application would let a client conjure cards
	// into the universe.
	hand := append([]models.Card(nil), g.Hands[playerID]...)
	for _, c := range cards {
		found := false
		for i, h := range hand {
			if h == c {
				hand = append(hand[:i], hand[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return
		}
	}
	g.Hands[playerID] = hand

	if len(hand) == 0 {
		g.endGame(playerID)
		return
	}

	// The played cards leave the hand; all but the last are buried under the
	// draw pile and the last becomes the table card, so the universe stays
	// intact.
	g.Deck = append(g.Deck, g.TableCard)
	g.Deck = append(g.Deck, cards[:len(cards)-1]...)
	g.TableCard = cards[len(cards)-1]

	next, advance, tag := resolvePlay(g.Effect, cards)
	g.Effect = next
	g.advanceTurn(advance)

	if next.Kind == EffectChooseSuit {
		g.fireEventToPlayer(playerID, GameEvent{Type: EventChooseSuit})
	}
	g.fireEvent(g.snapshot(EventGameUpdate, tag))
}

// SetForcedSuit resolves a pending queen decision. Valid only from the player
// who played the queen, while the decision is open.
func (g *Game) SetForcedSuit(playerID uuid.UUID, suit string) {
	if g.Over || playerID != g.CurrentPlayer() || g.Effect.Kind != EffectChooseSuit {
		return
	}
	valid := false
	for _, s := range models.Suits {
		if suit == s {
			valid = true
			break
		}
	}
	if !valid {
		return
	}
	g.Effect = Effect{Kind: EffectForcedSuit, Suit: suit}
	g.advanceTurn(1)
	g.fireEvent(g.snapshot(EventGameUpdate, TagSuitChosen))
}

// Stand absorbs an ace stop without drawing. Silently rejected when no stop
// is pending; standing is not a free pass on an ordinary turn.
func (g *Game) Stand(playerID uuid.UUID) {
	if g.Over || playerID != g.CurrentPlayer() || g.Effect.Kind != EffectStop {
		return
	}
	g.Effect = Effect{}
	g.advanceTurn(1)
	g.fireEvent(g.snapshot(EventGameUpdate, TagStand))
}

// DrawCard resolves the current player's draw. Under a penalty the whole
// accumulated count is drawn, or as much of it as the deck can cover;
// drawing never errors on an empty deck. Under a stop the draw absorbs it;
// otherwise a
// single card is drawn when the deck has one. The turn advances either way.
func (g *Game) DrawCard(playerID uuid.UUID) {
	if g.Over || playerID != g.CurrentPlayer() || g.Effect.Kind == EffectChooseSuit {
		return
	}
	switch g.Effect.Kind {
	case EffectPenalty:
		g.drawInto(playerID, g.Effect.Penalty)
	case EffectStop:
		g.drawInto(playerID, 1)
	default:
		g.drawInto(playerID, 1)
	}
	g.Effect = Effect{}
	g.advanceTurn(1)
	g.fireEvent(g.snapshot(EventGameUpdate, TagDraw))
}

// drawInto moves up to n cards from the top of the deck into the hand.
func (g *Game) drawInto(playerID uuid.UUID, n int) {
	if n > len(g.Deck) {
		n = len(g.Deck)
	}
	if n <= 0 {
		return
	}
	g.Hands[playerID] = append(g.Hands[playerID], g.Deck[:n]...)
	g.Deck = g.Deck[n:]
}

// RemovePlayer folds a departing player out of a running game: their seat
// leaves Order, their hand is buried under the draw pile, and the turn index
// is repaired. A departure that leaves fewer than two seats ends the game in
// favor of the survivor. A pending queen decision held by the departing
// player is discarded.
func (g *Game) RemovePlayer(playerID uuid.UUID) {
	if g.Over {
		return
	}
	seat := -1
	for i, id := range g.Order {
		if id == playerID {
			seat = i
			break
		}
	}
	if seat == -1 {
		return
	}

	wasCurrent := seat == g.TurnIndex
	g.Deck = append(g.Deck, g.Hands[playerID]...)
	delete(g.Hands, playerID)
	g.Order = append(g.Order[:seat], g.Order[seat+1:]...)

	if len(g.Order) < 2 {
		log.Printf("game %s: only one seat left after %s departed, ending", g.RoomCode, playerID)
		g.endGame(g.Order[0])
		return
	}

	if seat < g.TurnIndex {
		g.TurnIndex--
	}
	g.TurnIndex %= len(g.Order)
	if wasCurrent && g.Effect.Kind == EffectChooseSuit {
		g.Effect = Effect{}
	}
	g.fireEvent(g.snapshot(EventGameUpdate, ""))
}

// endGame broadcasts game_over naming the winner and detaches the game.
// No further play/draw requests are accepted for the room until a new start.
func (g *Game) endGame(winner uuid.UUID) {
	g.Over = true
	if g.OnGameEnd != nil {
		g.OnGameEnd(winner)
	}
	g.fireEvent(GameEvent{Type: EventGameOver, Winner: winner.String(), DeckSize: len(g.Deck)})
}

func (g *Game) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

func (g *Game) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn != nil {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}
