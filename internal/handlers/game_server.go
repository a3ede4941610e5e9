// internal/handlers/game_server.go
package handlers

import (
	"github.com/google/uuid"

	"github.com/mirohitka8-blip/faraon-multiplayer/internal/room"
)

// GameServer is the high-level glue between the websocket gateway and the
// room directory: it owns the room store and the connection registry and
// hands rooms their outbound primitives.
type GameServer struct {
	Rooms    *room.Store
	Registry *Registry
}

func NewGameServer() *GameServer {
	return &GameServer{
		Rooms:    room.NewStore(),
		Registry: NewRegistry(),
	}
}

// BroadcastToRoom delivers msg to every listed member. Non-blocking: the
// room lock is held by the caller.
func (gs *GameServer) BroadcastToRoom(ids []uuid.UUID, msg any) {
	for _, id := range ids {
		if conn, ok := gs.Registry.Get(id); ok {
			conn.Write(msg)
		}
	}
}

// UnicastTo delivers msg to one player, if connected.
func (gs *GameServer) UnicastTo(id uuid.UUID, msg any) {
	if conn, ok := gs.Registry.Get(id); ok {
		conn.Write(msg)
	}
}

// wireRoom attaches the gateway's outbound primitives to a room.
func (gs *GameServer) wireRoom(r *room.Room) {
	r.Broadcast = gs.BroadcastToRoom
	r.Unicast = gs.UnicastTo
}

// HandleDisconnect unwinds one connection's presence. The departure sweep
// runs only when no newer connection holds the identity: a superseded
// connection's cleanup must not evict the player who just reconnected.
func (gs *GameServer) HandleDisconnect(conn *PlayerConn) {
	gs.Registry.Remove(conn)
	if _, ok := gs.Registry.Get(conn.ID); ok {
		return
	}
	gs.HandleDeparture(conn.ID)
}

// HandleDeparture removes a departed player from every room they occupy.
func (gs *GameServer) HandleDeparture(playerID uuid.UUID) {
	for _, r := range gs.Rooms.RoomsWith(playerID) {
		r.RemovePlayer(playerID)
	}
}
