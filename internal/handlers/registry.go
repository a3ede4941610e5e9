// internal/handlers/registry.go
package handlers

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// PlayerConn is a single player's live websocket presence. Outbound traffic
// goes through OutChan so the core never blocks on a slow client.
type PlayerConn struct {
	ID      uuid.UUID
	Cancel  context.CancelFunc
	OutChan chan any
}

// Write pushes a message onto the player's OutChan non-blockingly. Logs if
// the channel is full and the message is dropped.
func (conn *PlayerConn) Write(msg any) {
	select {
	case conn.OutChan <- msg:
	default:
		log.Printf("PlayerConn %s: OutChan full, dropped message", conn.ID)
	}
}

// WriteError sends a structured error payload.
func (conn *PlayerConn) WriteError(code string) {
	conn.Write(map[string]interface{}{
		"type":  "error",
		"error": code,
	})
}

// Registry maps player identity to the live connection, giving the core its
// UnicastTo/BroadcastToRoom primitives without ever exposing the transport.
type Registry struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*PlayerConn
}

// NewRegistry initializes an empty Registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]*PlayerConn)}
}

// Add registers a connection. A lingering previous connection for the same
// player is cancelled; its pumps unwind on their own contexts.
func (reg *Registry) Add(conn *PlayerConn) {
	reg.mu.Lock()
	old := reg.conns[conn.ID]
	reg.conns[conn.ID] = conn
	reg.mu.Unlock()

	if old != nil && old != conn && old.Cancel != nil {
		log.Printf("player %s reconnected, cancelling previous connection", conn.ID)
		old.Cancel()
	}
}

// Remove unregisters a connection, but only if it is still the current one;
// a reconnect may already have replaced it.
func (reg *Registry) Remove(conn *PlayerConn) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.conns[conn.ID] == conn {
		delete(reg.conns, conn.ID)
	}
}

// Get returns the live connection for a player, if any.
func (reg *Registry) Get(id uuid.UUID) (*PlayerConn, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	c, ok := reg.conns[id]
	return c, ok
}
