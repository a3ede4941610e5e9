// internal/game/effect.go
package game

import "github.com/mirohitka8-blip/faraon-multiplayer/internal/models"

// EffectKind discriminates the active table effect. Exactly one effect is in
// force at any moment, so illegal combinations (a forced suit during a
// penalty chain, say) cannot be represented.
type EffectKind int

const (
	// EffectNone: ordinary rank-or-suit matching against the table card.
	EffectNone EffectKind = iota
	// EffectPenalty: an accumulated forced draw from chained sevens. The
	// current player must escalate with another seven, cancel with the green
	// jack, or draw the whole penalty.
	EffectPenalty
	// EffectForcedSuit: a queen's suit constraint is active.
	EffectForcedSuit
	// EffectStop: an ace stop. The current player must stand or draw.
	EffectStop
	// EffectChooseSuit: a queen was just played and its owner has not yet
	// named the forced suit. No plays are accepted until they do.
	EffectChooseSuit
)

// Effect is the tagged active-effect variant. Penalty is meaningful only for
// EffectPenalty, Suit only for EffectForcedSuit.
type Effect struct {
	Kind    EffectKind
	Penalty int
	Suit    string
}

// PendingDraw projects the variant onto the wire's pendingDraw field.
func (e Effect) PendingDraw() int {
	if e.Kind == EffectPenalty {
		return e.Penalty
	}
	return 0
}

// SkipCount projects the variant onto the wire's skipCount field.
func (e Effect) SkipCount() int {
	if e.Kind == EffectStop {
		return 1
	}
	return 0
}

// ForcedSuit projects the variant onto the wire's forcedSuit field.
func (e Effect) ForcedSuit() string {
	if e.Kind == EffectForcedSuit {
		return e.Suit
	}
	return ""
}

// IsPlayable reports whether card may legally be played on table under the
// active effect. Pure function, no side effects.
//
// Under a penalty only a seven (escalate) or the green jack (cancel) is
// legal. Under a forced suit only that suit is legal; the queen's constraint
// overrides ordinary matching. Otherwise the green jack and queens are always
// playable, anything may land on a green jack, and everything else matches by
// rank or suit.
func IsPlayable(card, table models.Card, effect Effect) bool {
	switch effect.Kind {
	case EffectPenalty:
		return card.Rank == "7" || card.IsGreenJack()
	case EffectForcedSuit:
		return card.Suit == effect.Suit
	case EffectChooseSuit:
		return false
	}
	if card.IsGreenJack() || card.Rank == "Q" {
		return true
	}
	if table.IsGreenJack() {
		return true
	}
	return card.Rank == table.Rank || card.Suit == table.Suit
}

// resolvePlay is the single transition function from (active effect, played
// cards) to (next effect, seats the turn advances, broadcast tag). It assumes
// the play already passed IsPlayable against cards[0].
//
// A burn is exactly four cards of one rank: every effect clears and the same
// player keeps the turn. The queen/ace/seven/green-jack effects attach to
// single-card plays only; any other bundle is an ordinary play.
func resolvePlay(cur Effect, cards []models.Card) (Effect, int, string) {
	if isBurn(cards) {
		return Effect{}, 0, TagBurn
	}
	if len(cards) == 1 {
		c := cards[0]
		switch {
		case c.IsGreenJack():
			// Universal canceller: any pending penalty or stop is wiped.
			return Effect{}, 1, TagGreenJack
		case c.Rank == "Q":
			return Effect{Kind: EffectChooseSuit}, 0, TagChooseSuit
		case c.Rank == "A":
			return Effect{Kind: EffectStop}, 1, TagAceDecision
		case c.Rank == "7":
			return Effect{Kind: EffectPenalty, Penalty: cur.PendingDraw() + 3}, 1, TagSevenStack
		}
	}
	// Ordinary play. A non-queen rank clears an active forced suit; a
	// multi-queen bundle leaves it standing.
	last := cards[len(cards)-1]
	if last.Rank == "Q" && cur.Kind == EffectForcedSuit {
		return cur, 1, ""
	}
	return Effect{}, 1, ""
}

// isBurn reports whether cards lays down all four of one rank at once.
func isBurn(cards []models.Card) bool {
	if len(cards) != 4 {
		return false
	}
	for _, c := range cards[1:] {
		if c.Rank != cards[0].Rank {
			return false
		}
	}
	return true
}
