// internal/models/player.go
package models

import "github.com/google/uuid"

// Player is a seated member of a room. ID is the opaque identity token the
// gateway issued for the player's connection; the transport itself never
// reaches the core.
type Player struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Ready bool      `json:"ready"`
}
