// internal/game/game_test.go
package game

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirohitka8-blip/faraon-multiplayer/internal/models"
)

// mockBroadcaster collects events instead of pushing them over WS.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []GameEvent
	playerEvents map[uuid.UUID][]GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		playerEvents: make(map[uuid.UUID][]GameEvent),
	}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID uuid.UUID, ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = nil
	mb.playerEvents = make(map[uuid.UUID][]GameEvent)
}

func (mb *mockBroadcaster) getLastEvent() *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if len(mb.allEvents) == 0 {
		return nil
	}
	return &mb.allEvents[len(mb.allEvents)-1]
}

func (mb *mockBroadcaster) getLastPlayerEvent(playerID uuid.UUID) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events := mb.playerEvents[playerID]
	if len(events) == 0 {
		return nil
	}
	return &events[len(events)-1]
}

func (mb *mockBroadcaster) eventCount() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.allEvents)
}

func card(rank, suit string) models.Card {
	return models.Card{Rank: rank, Suit: suit}
}

func makeSeats(n int) []uuid.UUID {
	seats := make([]uuid.UUID, n)
	for i := range seats {
		seats[i] = uuid.New()
	}
	return seats
}

// rigGame builds a game with hand contents and table card fixed by the test;
// every card of the universe not placed explicitly goes to the draw pile, so
// conservation holds by construction.
func rigGame(t *testing.T, seats []uuid.UUID, hands [][]models.Card, table models.Card) (*Game, *mockBroadcaster) {
	t.Helper()
	require.Equal(t, len(seats), len(hands))

	used := map[models.Card]bool{table: true}
	g := &Game{
		RoomCode: "RIGGD",
		Hands:    make(map[uuid.UUID][]models.Card, len(seats)),
		Order:    append([]uuid.UUID(nil), seats...),
	}
	for i, id := range seats {
		g.Hands[id] = append([]models.Card(nil), hands[i]...)
		for _, c := range hands[i] {
			require.False(t, used[c], "card %v placed twice", c)
			used[c] = true
		}
	}
	g.TableCard = table
	for _, suit := range models.Suits {
		for _, rank := range models.Ranks {
			c := card(rank, suit)
			if !used[c] {
				g.Deck = append(g.Deck, c)
			}
		}
	}

	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn
	return g, mb
}

// assertCardConservation checks the deck, the hands and the table card still
// add up to the full 32-card universe. Only meaningful while the game runs;
// a finished game stops tracking the played-out cards.
func assertCardConservation(t *testing.T, g *Game) {
	t.Helper()
	if g.Over {
		return
	}
	seen := map[models.Card]int{g.TableCard: 1}
	for _, c := range g.Deck {
		seen[c]++
	}
	for _, hand := range g.Hands {
		for _, c := range hand {
			seen[c]++
		}
	}
	total := 0
	for c, n := range seen {
		require.Equal(t, 1, n, "card %v counted %d times", c, n)
		total += n
	}
	require.Equal(t, 32, total)
}

func TestNewGameTurnOrder(t *testing.T) {
	seats := makeSeats(3)
	g := New("ABCDE", seats)

	assert.Equal(t, seats, g.Order)
	assert.Equal(t, 0, g.TurnIndex)
	assert.Equal(t, seats[0], g.CurrentPlayer())
	assert.Equal(t, EffectNone, g.Effect.Kind)
	assertCardConservation(t, g)
}

func TestOrdinaryPlayMatchesRankOrSuit(t *testing.T) {
	seats := makeSeats(2)
	g, mb := rigGame(t, seats,
		[][]models.Card{
			{card("9", "S"), card("K", "H")},
			{card("8", "D"), card("T", "C")},
		},
		card("9", "D"),
	)

	// Neither rank nor suit matches: rejected with no traffic.
	g.PlayCards(seats[0], []models.Card{card("K", "H")})
	assert.Zero(t, mb.eventCount())
	assert.Equal(t, seats[0], g.CurrentPlayer())

	g.PlayCards(seats[0], []models.Card{card("9", "S")})
	require.Equal(t, 1, mb.eventCount())
	ev := mb.getLastEvent()
	assert.Equal(t, EventGameUpdate, ev.Type)
	assert.Equal(t, card("9", "S"), *ev.TableCard)
	assert.Equal(t, seats[1].String(), ev.Turn)
	assert.Len(t, g.Hands[seats[0]], 1)
	assertCardConservation(t, g)
}

func TestOutOfTurnPlayIsSilent(t *testing.T) {
	seats := makeSeats(2)
	g, mb := rigGame(t, seats,
		[][]models.Card{
			{card("9", "S")},
			{card("9", "D")},
		},
		card("9", "H"),
	)

	before := g.snapshot(EventGameUpdate, "")
	g.PlayCards(seats[1], []models.Card{card("9", "D")})
	assert.Zero(t, mb.eventCount())
	assert.Equal(t, before, g.snapshot(EventGameUpdate, ""))
}

func TestPlayUnheldCardRejected(t *testing.T) {
	seats := makeSeats(2)
	g, mb := rigGame(t, seats,
		[][]models.Card{
			{card("9", "S"), card("K", "H")},
			{card("8", "C"), card("T", "C")},
		},
		card("9", "D"),
	)

	// 7D is legal on 9D but sits in the draw pile, not the hand. Accepting
	// it would duplicate the card and hang a penalty on the opponent.
	before := g.snapshot(EventGameUpdate, "")
	g.PlayCards(seats[0], []models.Card{card("7", "D")})
	assert.Zero(t, mb.eventCount())
	assert.Equal(t, before, g.snapshot(EventGameUpdate, ""))
	assert.Equal(t, EffectNone, g.Effect.Kind)
	assertCardConservation(t, g)

	// A bundle is all or nothing: a held, legal lead card plus one unheld
	// card must not strip the lead from the hand.
	g.PlayCards(seats[0], []models.Card{card("9", "S"), card("K", "D")})
	assert.Len(t, g.Hands[seats[0]], 2)
	assert.Equal(t, before, g.snapshot(EventGameUpdate, ""))

	// Naming the same held card twice is a duplication attempt, not a pair.
	g.PlayCards(seats[0], []models.Card{card("9", "S"), card("9", "S")})
	assert.Len(t, g.Hands[seats[0]], 2)
	assert.Zero(t, mb.eventCount())
	assertCardConservation(t, g)
}

func TestSevenStacksPenalty(t *testing.T) {
	seats := makeSeats(2)
	g, mb := rigGame(t, seats,
		[][]models.Card{
			{card("7", "H"), card("K", "S")},
			{card("7", "D"), card("8", "C")},
		},
		card("9", "H"),
	)

	g.PlayCards(seats[0], []models.Card{card("7", "H")})
	require.Equal(t, EffectPenalty, g.Effect.Kind)
	assert.Equal(t, 3, g.Effect.Penalty)
	assert.Equal(t, TagSevenStack, mb.getLastEvent().Effect)
	assert.Equal(t, 3, mb.getLastEvent().PendingDraw)

	// Second seven escalates to six; an unrelated card is not playable.
	g.PlayCards(seats[1], []models.Card{card("8", "C")})
	assert.Equal(t, 3, g.Effect.Penalty, "non-seven must not slip through a penalty")
	g.PlayCards(seats[1], []models.Card{card("7", "D")})
	require.Equal(t, EffectPenalty, g.Effect.Kind)
	assert.Equal(t, 6, g.Effect.Penalty)

	// Back to the first player, who has no seven left and draws the stack.
	handBefore := len(g.Hands[seats[0]])
	deckBefore := len(g.Deck)
	g.DrawCard(seats[0])
	assert.Len(t, g.Hands[seats[0]], handBefore+6)
	assert.Len(t, g.Deck, deckBefore-6)
	assert.Equal(t, EffectNone, g.Effect.Kind)
	assert.Equal(t, seats[1], g.CurrentPlayer())
	assert.Equal(t, TagDraw, mb.getLastEvent().Effect)
	assertCardConservation(t, g)
}

func TestGreenJackCancelsPenalty(t *testing.T) {
	seats := makeSeats(2)
	g, _ := rigGame(t, seats,
		[][]models.Card{
			{card("7", "H"), card("K", "S")},
			{card("J", "C"), card("8", "C")},
		},
		card("9", "H"),
	)

	g.PlayCards(seats[0], []models.Card{card("7", "H")})
	require.Equal(t, EffectPenalty, g.Effect.Kind)

	g.PlayCards(seats[1], []models.Card{card("J", "C")})
	assert.Equal(t, EffectNone, g.Effect.Kind, "green jack should wipe the penalty")
	assert.Equal(t, seats[0], g.CurrentPlayer())

	// Anything lands on a green jack.
	g.PlayCards(seats[0], []models.Card{card("K", "S")})
	assert.Equal(t, card("K", "S"), g.TableCard)
	assertCardConservation(t, g)
}

func TestQueenForcesSuit(t *testing.T) {
	seats := makeSeats(2)
	g, mb := rigGame(t, seats,
		[][]models.Card{
			{card("Q", "D"), card("K", "S")},
			{card("8", "C"), card("T", "C")},
		},
		card("9", "H"),
	)

	// Queen is playable regardless of the table card.
	g.PlayCards(seats[0], []models.Card{card("Q", "D")})
	require.Equal(t, EffectChooseSuit, g.Effect.Kind)
	assert.Equal(t, seats[0], g.CurrentPlayer(), "turn must hold until the suit is named")

	priv := mb.getLastPlayerEvent(seats[0])
	require.NotNil(t, priv)
	assert.Equal(t, EventChooseSuit, priv.Type)

	// Nobody can play or draw while the decision is open.
	g.PlayCards(seats[1], []models.Card{card("8", "C")})
	g.DrawCard(seats[0])
	require.Equal(t, EffectChooseSuit, g.Effect.Kind)

	// A bogus suit is ignored; a real one locks in and advances the turn.
	g.SetForcedSuit(seats[0], "X")
	require.Equal(t, EffectChooseSuit, g.Effect.Kind)
	g.SetForcedSuit(seats[0], "C")
	require.Equal(t, EffectForcedSuit, g.Effect.Kind)
	assert.Equal(t, "C", g.Effect.Suit)
	assert.Equal(t, seats[1], g.CurrentPlayer())
	assert.Equal(t, TagSuitChosen, mb.getLastEvent().Effect)
	assert.Equal(t, "C", mb.getLastEvent().ForcedSuit)

	// Only the forced suit is legal now, rank match or not.
	g.PlayCards(seats[1], []models.Card{card("8", "C")})
	assert.Equal(t, card("8", "C"), g.TableCard)
	assert.Equal(t, EffectNone, g.Effect.Kind, "ordinary play clears the forced suit")
	assertCardConservation(t, g)
}

func TestAceStopStandAndDraw(t *testing.T) {
	seats := makeSeats(2)
	g, mb := rigGame(t, seats,
		[][]models.Card{
			{card("A", "H"), card("A", "S"), card("K", "S")},
			{card("8", "C"), card("T", "C")},
		},
		card("9", "H"),
	)

	// Standing on an ordinary turn is not a thing.
	g.Stand(seats[0])
	assert.Zero(t, mb.eventCount())

	g.PlayCards(seats[0], []models.Card{card("A", "H")})
	require.Equal(t, EffectStop, g.Effect.Kind)
	assert.Equal(t, 1, mb.getLastEvent().SkipCount)
	assert.Equal(t, seats[1], g.CurrentPlayer())

	// Standing absorbs the stop without a draw.
	handBefore := len(g.Hands[seats[1]])
	g.Stand(seats[1])
	assert.Equal(t, EffectNone, g.Effect.Kind)
	assert.Len(t, g.Hands[seats[1]], handBefore)
	assert.Equal(t, seats[0], g.CurrentPlayer())
	assert.Equal(t, TagStand, mb.getLastEvent().Effect)

	// Drawing also resolves a stop.
	g.PlayCards(seats[0], []models.Card{card("A", "S")})
	require.Equal(t, EffectStop, g.Effect.Kind)
	handBefore = len(g.Hands[seats[1]])
	g.DrawCard(seats[1])
	assert.Equal(t, EffectNone, g.Effect.Kind)
	assert.Len(t, g.Hands[seats[1]], handBefore+1)
	assertCardConservation(t, g)
}

func TestBurnKeepsTurn(t *testing.T) {
	seats := makeSeats(2)
	g, mb := rigGame(t, seats,
		[][]models.Card{
			{card("K", "H"), card("K", "D"), card("K", "C"), card("K", "S"), card("9", "S")},
			{card("8", "C"), card("T", "C")},
		},
		card("9", "H"),
	)

	g.PlayCards(seats[0], []models.Card{
		card("K", "H"), card("K", "D"), card("K", "C"), card("K", "S"),
	})
	assert.Equal(t, seats[0], g.CurrentPlayer(), "burn keeps the turn")
	assert.Equal(t, EffectNone, g.Effect.Kind)
	assert.Equal(t, card("K", "S"), g.TableCard, "last burned card tops the table")
	assert.Equal(t, TagBurn, mb.getLastEvent().Effect)
	assert.Len(t, g.Hands[seats[0]], 1)
	assertCardConservation(t, g)
}

func TestSevenBundleResolvesChain(t *testing.T) {
	seats := makeSeats(2)
	g, _ := rigGame(t, seats,
		[][]models.Card{
			{card("7", "S")},
			{card("7", "H"), card("7", "D"), card("7", "C"), card("9", "C")},
		},
		card("9", "S"),
	)
	g.PlayCards(seats[0], []models.Card{card("7", "S")})
	require.Equal(t, EffectPenalty, g.Effect.Kind)

	// A three-seven bundle is no burn; it resolves as an ordinary play and the
	// chain collapses with it.
	g.PlayCards(seats[1], []models.Card{card("7", "H"), card("7", "D"), card("7", "C")})
	assert.Equal(t, EffectNone, g.Effect.Kind)
	assert.Equal(t, card("7", "C"), g.TableCard)
	assert.Equal(t, seats[0], g.CurrentPlayer())
	assertCardConservation(t, g)
}

func TestWinEndsGame(t *testing.T) {
	seats := makeSeats(2)
	g, mb := rigGame(t, seats,
		[][]models.Card{
			{card("9", "S")},
			{card("8", "C"), card("T", "C")},
		},
		card("9", "H"),
	)
	var ended uuid.UUID
	g.OnGameEnd = func(winner uuid.UUID) { ended = winner }

	g.PlayCards(seats[0], []models.Card{card("9", "S")})
	require.True(t, g.Over)
	assert.Equal(t, seats[0], ended)

	ev := mb.getLastEvent()
	require.NotNil(t, ev)
	assert.Equal(t, EventGameOver, ev.Type)
	assert.Equal(t, seats[0].String(), ev.Winner)

	// Nothing moves after the game is over.
	count := mb.eventCount()
	g.PlayCards(seats[1], []models.Card{card("8", "C")})
	g.DrawCard(seats[1])
	g.Stand(seats[1])
	assert.Equal(t, count, mb.eventCount())
}

func TestDrawFromEmptyDeckStillAdvances(t *testing.T) {
	seats := makeSeats(2)
	g, mb := rigGame(t, seats,
		[][]models.Card{
			{card("9", "S"), card("K", "H")},
			{card("8", "C"), card("T", "C")},
		},
		card("9", "H"),
	)
	g.Deck = nil

	handBefore := len(g.Hands[seats[0]])
	g.DrawCard(seats[0])
	assert.Len(t, g.Hands[seats[0]], handBefore, "empty deck yields no card")
	assert.Equal(t, seats[1], g.CurrentPlayer(), "the turn still advances")
	assert.Equal(t, 0, mb.getLastEvent().DeckSize)
}

func TestPenaltyDrawClampedToDeck(t *testing.T) {
	seats := makeSeats(2)
	g, _ := rigGame(t, seats,
		[][]models.Card{
			{card("7", "H")},
			{card("8", "C"), card("T", "C")},
		},
		card("9", "H"),
	)

	g.PlayCards(seats[0], []models.Card{card("7", "H")})
	require.Equal(t, 3, g.Effect.Penalty)
	// Leave a single card in the pile; the draw takes what exists.
	g.Deck = g.Deck[:1]

	handBefore := len(g.Hands[seats[1]])
	g.DrawCard(seats[1])
	assert.Len(t, g.Hands[seats[1]], handBefore+1)
	assert.Empty(t, g.Deck)
	assert.Equal(t, EffectNone, g.Effect.Kind)
}

func TestRemovePlayerFoldsHand(t *testing.T) {
	seats := makeSeats(3)
	g, mb := rigGame(t, seats,
		[][]models.Card{
			{card("9", "S"), card("K", "H")},
			{card("8", "C"), card("T", "C")},
			{card("A", "D"), card("Q", "S")},
		},
		card("9", "H"),
	)

	deckBefore := len(g.Deck)
	g.RemovePlayer(seats[1])
	assert.Len(t, g.Order, 2)
	assert.NotContains(t, g.Order, seats[1])
	assert.Len(t, g.Deck, deckBefore+2, "departed hand folds under the pile")
	assert.Equal(t, seats[0], g.CurrentPlayer())
	assertCardConservation(t, g)

	// Removing the seat before the current one must not shift whose turn it is.
	g.advanceTurn(1)
	require.Equal(t, seats[2], g.CurrentPlayer())
	g.RemovePlayer(seats[0])
	require.True(t, g.Over, "one seat left ends the game")
	assert.Equal(t, seats[2].String(), mb.getLastEvent().Winner)
}

func TestRemoveCurrentPlayerRepairsTurn(t *testing.T) {
	seats := makeSeats(3)
	g, _ := rigGame(t, seats,
		[][]models.Card{
			{card("9", "S")},
			{card("8", "C")},
			{card("A", "D")},
		},
		card("9", "H"),
	)

	g.advanceTurn(1)
	require.Equal(t, seats[1], g.CurrentPlayer())
	g.RemovePlayer(seats[1])
	assert.Equal(t, seats[2], g.CurrentPlayer(), "turn passes to the next surviving seat")

	// Current seat at the end of the order wraps to the front.
	g2, _ := rigGame(t, seats,
		[][]models.Card{
			{card("9", "S")},
			{card("8", "C")},
			{card("A", "D")},
		},
		card("9", "H"),
	)
	g2.advanceTurn(2)
	require.Equal(t, seats[2], g2.CurrentPlayer())
	g2.RemovePlayer(seats[2])
	assert.Equal(t, seats[0], g2.CurrentPlayer())
}

func TestIsPlayableTable(t *testing.T) {
	cases := []struct {
		name   string
		card   models.Card
		table  models.Card
		effect Effect
		want   bool
	}{
		{"rank match", card("8", "H"), card("8", "S"), Effect{}, true},
		{"suit match", card("8", "H"), card("K", "H"), Effect{}, true},
		{"no match", card("8", "H"), card("K", "S"), Effect{}, false},
		{"queen anywhere", card("Q", "H"), card("8", "S"), Effect{}, true},
		{"green jack anywhere", card("J", "C"), card("8", "S"), Effect{}, true},
		{"plain jack matches normally", card("J", "H"), card("8", "S"), Effect{}, false},
		{"anything on green jack", card("8", "H"), card("J", "C"), Effect{}, true},
		{"penalty blocks plain card", card("8", "H"), card("7", "H"), Effect{Kind: EffectPenalty, Penalty: 3}, false},
		{"penalty allows seven", card("7", "S"), card("7", "H"), Effect{Kind: EffectPenalty, Penalty: 3}, true},
		{"penalty allows green jack", card("J", "C"), card("7", "H"), Effect{Kind: EffectPenalty, Penalty: 3}, true},
		{"forced suit blocks rank match", card("9", "H"), card("9", "D"), Effect{Kind: EffectForcedSuit, Suit: "S"}, false},
		{"forced suit allows its suit", card("K", "S"), card("Q", "D"), Effect{Kind: EffectForcedSuit, Suit: "S"}, true},
		{"choose-suit blocks everything", card("Q", "H"), card("Q", "D"), Effect{Kind: EffectChooseSuit}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsPlayable(tc.card, tc.table, tc.effect))
		})
	}
}
