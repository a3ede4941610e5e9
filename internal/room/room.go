// internal/room/room.go
package room

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mirohitka8-blip/faraon-multiplayer/internal/game"
	"github.com/mirohitka8-blip/faraon-multiplayer/internal/models"
)

// MaxPlayers is the seat cap per room.
const MaxPlayers = 4

// User-facing rejections. The gateway surfaces these as unicast error
// messages to the requester; they never destabilize the room. Everything
// else (acting out of turn, unknown rooms on game requests, stale cards) is
// a deliberate silent no-op.
var (
	ErrRoomNotFound     = errors.New("room_not_found")
	ErrRoomFull         = errors.New("room_full")
	ErrNotEnoughPlayers = errors.New("not_enough_players")
	ErrPlayersNotReady  = errors.New("players_not_ready")
)

// Room is an ephemeral grouping of players identified by a short shareable
// code. All mutations to a room (roster and game alike) happen under Mu,
// one at a time, in arrival order; rooms never share state with each other.
type Room struct {
	Code   string
	HostID uuid.UUID

	// Players in join order. Seating order at game start is frozen from
	// this sequence.
	Players []*models.Player

	// Game is non-nil only while the room is in play.
	Game *game.Game

	// OnEmpty is called after the last player leaves, typically wired to
	// Store.Delete by the code that created the room.
	OnEmpty func(code string)

	// Broadcast delivers msg to the given players, Unicast to a single one.
	// Both are invoked while Mu is held and must not block.
	Broadcast func(ids []uuid.UUID, msg any)
	Unicast   func(id uuid.UUID, msg any)

	Mu sync.Mutex
}

// AddPlayer appends a joining player (not ready) and broadcasts the updated
// roster. The joiner additionally receives a full room_state snapshot first.
func (r *Room) AddPlayer(id uuid.UUID, name string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if idx := r.memberIndexLocked(id); idx >= 0 {
		// Rejoin over a fresh connection; keep the seat, refresh the name.
		r.Players[idx].Name = name
		r.unicastLocked(id, r.statePayloadLocked(id))
		r.broadcastRosterLocked()
		return nil
	}
	if len(r.Players) >= MaxPlayers {
		return ErrRoomFull
	}
	r.Players = append(r.Players, &models.Player{ID: id, Name: name})
	r.unicastLocked(id, r.statePayloadLocked(id))
	r.broadcastRosterLocked()
	return nil
}

// ToggleReady flips the requester's ready flag. A request from someone who
// already left is silently ignored, since it may race a departure.
func (r *Room) ToggleReady(id uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	idx := r.memberIndexLocked(id)
	if idx < 0 {
		return
	}
	r.Players[idx].Ready = !r.Players[idx].Ready
	r.broadcastRosterLocked()
}

// Kick ejects target from the room. Host only; anyone else's request is a
// silent no-op. The target learns they were ejected via a distinct "kicked"
// notice, not merely a shrunk roster.
func (r *Room) Kick(requesterID, targetID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if requesterID != r.HostID || r.memberIndexLocked(targetID) < 0 {
		return
	}
	r.unicastLocked(targetID, map[string]interface{}{
		"type": "kicked",
		"code": r.Code,
	})
	r.removeLocked(targetID)
}

// RemovePlayer handles a departure (connection loss or explicit leave). The
// host role passes to the next player in roster order; an emptied room is
// destroyed via OnEmpty.
func (r *Room) RemovePlayer(id uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.memberIndexLocked(id) < 0 {
		return
	}
	r.removeLocked(id)
}

// removeLocked takes a member out of the roster and the running game, fixes
// up host identity, and broadcasts the new roster. Assumes Mu is held.
func (r *Room) removeLocked(id uuid.UUID) {
	idx := r.memberIndexLocked(id)
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	if r.Game != nil {
		r.Game.RemovePlayer(id)
	}

	if len(r.Players) == 0 {
		log.Printf("room %s is empty, destroying", r.Code)
		if r.OnEmpty != nil {
			r.OnEmpty(r.Code)
		}
		return
	}
	if r.HostID == id {
		r.HostID = r.Players[0].ID
		log.Printf("room %s: host left, %s is the new host", r.Code, r.HostID)
	}
	r.broadcastRosterLocked()
}

// StartGame deals and installs a game. Host only (silent otherwise); at
// least two seated players, all of them ready.
func (r *Room) StartGame(requesterID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if requesterID != r.HostID || r.Game != nil {
		return nil
	}
	if len(r.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	seats := make([]uuid.UUID, len(r.Players))
	for i, p := range r.Players {
		if !p.Ready {
			return ErrPlayersNotReady
		}
		seats[i] = p.ID
	}

	g := game.New(r.Code, seats)
	g.BroadcastFn = func(ev game.GameEvent) { r.broadcastLocked(ev) }
	g.BroadcastToPlayerFn = func(id uuid.UUID, ev game.GameEvent) { r.unicastLocked(id, ev) }
	g.OnGameEnd = func(winner uuid.UUID) {
		// Runs inside a game call, so Mu is already held here.
		r.Game = nil
		for _, p := range r.Players {
			p.Ready = false
		}
	}
	r.Game = g
	log.Printf("room %s: game started with %d players", r.Code, len(seats))
	r.broadcastLocked(g.Snapshot(game.EventGameStart))
	return nil
}

// PlayCards routes a play request into the room's game, if any.
func (r *Room) PlayCards(id uuid.UUID, cards []models.Card) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.Game != nil {
		r.Game.PlayCards(id, cards)
	}
}

// DrawCard routes a draw request into the room's game, if any.
func (r *Room) DrawCard(id uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.Game != nil {
		r.Game.DrawCard(id)
	}
}

// Stand routes an ace-stand request into the room's game, if any.
func (r *Room) Stand(id uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.Game != nil {
		r.Game.Stand(id)
	}
}

// ChooseSuit routes a queen suit choice into the room's game, if any.
func (r *Room) ChooseSuit(id uuid.UUID, suit string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.Game != nil {
		r.Game.SetForcedSuit(id, suit)
	}
}

// SendState unicasts the full room snapshot to one member. Used right after
// room creation; joiners get theirs inside AddPlayer.
func (r *Room) SendState(viewer uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.memberIndexLocked(viewer) >= 0 {
		r.unicastLocked(viewer, r.statePayloadLocked(viewer))
	}
}

// Chat broadcasts a chat line from a current member.
func (r *Room) Chat(id uuid.UUID, msg string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	idx := r.memberIndexLocked(id)
	if idx < 0 || msg == "" {
		return
	}
	r.broadcastLocked(map[string]interface{}{
		"type": "chat",
		"id":   id.String(),
		"name": r.Players[idx].Name,
		"msg":  msg,
		"ts":   time.Now().Unix(),
	})
}

func (r *Room) memberIndexLocked(id uuid.UUID) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *Room) broadcastRosterLocked() {
	r.broadcastLocked(r.rosterPayloadLocked())
}

func (r *Room) rosterPayloadLocked() map[string]interface{} {
	players := make([]map[string]interface{}, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, map[string]interface{}{
			"id":    p.ID.String(),
			"name":  p.Name,
			"ready": p.Ready,
		})
	}
	return map[string]interface{}{
		"type":    "room_update",
		"code":    r.Code,
		"host":    r.HostID.String(),
		"players": players,
	}
}

// statePayloadLocked is the private snapshot a joining player receives
// before the roster broadcast.
func (r *Room) statePayloadLocked(viewer uuid.UUID) map[string]interface{} {
	payload := r.rosterPayloadLocked()
	payload["type"] = "room_state"
	payload["your_id"] = viewer.String()
	payload["in_game"] = r.Game != nil
	return payload
}

func (r *Room) broadcastLocked(msg any) {
	if r.Broadcast == nil {
		return
	}
	ids := make([]uuid.UUID, len(r.Players))
	for i, p := range r.Players {
		ids[i] = p.ID
	}
	r.Broadcast(ids, msg)
}

func (r *Room) unicastLocked(id uuid.UUID, msg any) {
	if r.Unicast != nil {
		r.Unicast(id, msg)
	}
}
