// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mirohitka8-blip/faraon-multiplayer/internal/middleware"
	"github.com/mirohitka8-blip/faraon-multiplayer/internal/models"
)

// ClientMessage is the inbound wire shape. Type discriminates the request;
// the remaining fields are per-kind payload.
type ClientMessage struct {
	Type string `json:"type"`

	// Name is the display name for create_room / join_room.
	Name string `json:"name,omitempty"`
	// Code targets a room for everything after create_room.
	Code string `json:"code,omitempty"`

	Cards  []models.Card `json:"cards,omitempty"`
	Suit   string        `json:"suit,omitempty"`
	Target string        `json:"target,omitempty"`
	Msg    string        `json:"msg,omitempty"`
}

// WSHandler upgrades the connection, resolves the player's identity, and
// runs the read loop. One websocket per player carries both directory and
// in-game traffic; the connection's loss fires the departure path once.
func WSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Identity first: the token cookie can only be set before the
		// upgrade hijacks the response.
		playerID, err := EnsurePlayerToken(w, r)
		if err != nil {
			logger.Warnf("player authentication failed: %v", err)
			http.Error(w, "authentication failed", http.StatusInternalServerError)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"faraon"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "faraon" {
			c.Close(websocket.StatusPolicyViolation, "client must speak the faraon subprotocol")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, playerID.String())

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		conn := &PlayerConn{
			ID:      playerID,
			Cancel:  cancel,
			OutChan: make(chan any, 16),
		}
		gs.Registry.Add(conn)

		go writePump(ctx, c, conn, logger)
		readErr := readPump(ctx, c, gs, conn, logger)

		// Cleanup after the read loop exits. The registry drop comes first
		// so departure broadcasts skip the dying connection.
		gs.HandleDisconnect(conn)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, playerID.String(), readErr)
	}
}

// readPump reads client messages and applies them in arrival order. Each
// message is routed under its target room's lock, so per-room mutations
// never interleave.
func readPump(ctx context.Context, c *websocket.Conn, gs *GameServer, conn *PlayerConn, logger *logrus.Logger) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			logger.Warnf("read error for player %s: %v", conn.ID, err)
			return err
		}
		if typ != websocket.MessageText {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("invalid json from player %s: %v", conn.ID, err)
			conn.WriteError("invalid_json")
			continue
		}
		routeMessage(gs, conn, msg, logger)
	}
}

// routeMessage dispatches one inbound request. User-facing rejections come
// back as unicast errors; everything else that cannot apply is dropped
// silently so a desynchronized client can recover on its own.
func routeMessage(gs *GameServer, conn *PlayerConn, msg ClientMessage, logger *logrus.Logger) {
	switch msg.Type {
	case "create_room":
		r := gs.Rooms.Create(conn.ID, msg.Name)
		gs.wireRoom(r)
		r.SendState(conn.ID)

	case "join_room":
		r, ok := gs.Rooms.Get(msg.Code)
		if !ok {
			conn.WriteError("room_not_found")
			return
		}
		if err := r.AddPlayer(conn.ID, msg.Name); err != nil {
			conn.WriteError(err.Error())
		}

	case "ready":
		if r, ok := gs.Rooms.Get(msg.Code); ok {
			r.ToggleReady(conn.ID)
		}

	case "kick_player":
		target, err := uuid.Parse(msg.Target)
		if err != nil {
			return
		}
		if r, ok := gs.Rooms.Get(msg.Code); ok {
			r.Kick(conn.ID, target)
		}

	case "start_game":
		r, ok := gs.Rooms.Get(msg.Code)
		if !ok {
			return
		}
		if err := r.StartGame(conn.ID); err != nil {
			conn.WriteError(err.Error())
		}

	case "play_cards":
		if r, ok := gs.Rooms.Get(msg.Code); ok {
			r.PlayCards(conn.ID, msg.Cards)
		}

	case "draw_card":
		if r, ok := gs.Rooms.Get(msg.Code); ok {
			r.DrawCard(conn.ID)
		}

	case "stand":
		if r, ok := gs.Rooms.Get(msg.Code); ok {
			r.Stand(conn.ID)
		}

	case "choose_suit":
		if r, ok := gs.Rooms.Get(msg.Code); ok {
			r.ChooseSuit(conn.ID, msg.Suit)
		}

	case "chat":
		if r, ok := gs.Rooms.Get(msg.Code); ok {
			r.Chat(conn.ID, msg.Msg)
		}

	case "leave_room":
		if r, ok := gs.Rooms.Get(msg.Code); ok {
			r.RemovePlayer(conn.ID)
		}

	default:
		logger.Warnf("unknown message type %q from player %s", msg.Type, conn.ID)
		conn.WriteError("unknown_type")
	}
}

// writePump drains the player's OutChan onto the socket and pings
// periodically. Exits when the context dies or a write fails; the read side
// notices the closure and unwinds the connection.
func writePump(ctx context.Context, c *websocket.Conn, conn *PlayerConn, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-conn.OutChan:
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("failed to marshal outgoing msg for player %s: %v", conn.ID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to player %s: %v", conn.ID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping to player %s failed, assuming disconnect: %v", conn.ID, err)
				return
			}
		}
	}
}
