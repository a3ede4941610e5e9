// internal/room/store.go
package room

import (
	"crypto/rand"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/mirohitka8-blip/faraon-multiplayer/internal/models"
)

// Room codes avoid ambiguous characters (0/O, 1/I). Five characters over a
// 32-symbol alphabet gives ~33M codes, so collisions among live rooms are
// negligible and handled by regeneration anyway.
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 5
)

// Store owns every live room, keyed by code. It is the only path to a Room;
// there is no ambient shared room table.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewStore initializes an empty Store.
func NewStore() *Store {
	return &Store{rooms: make(map[string]*Room)}
}

// Create makes a room with the requester as sole player and host, under a
// code unique among live rooms.
func (s *Store) Create(hostID uuid.UUID, name string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := generateCode()
	for {
		if _, taken := s.rooms[code]; !taken {
			break
		}
		code = generateCode()
	}
	r := &Room{
		Code:    code,
		HostID:  hostID,
		Players: []*models.Player{{ID: hostID, Name: name}},
		OnEmpty: s.Delete,
	}
	s.rooms[code] = r
	log.Printf("room %s created by %s", code, hostID)
	return r
}

// Get retrieves a live room by code.
func (s *Store) Get(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	return r, ok
}

// Delete removes a room from the store. Typically reached through a room's
// OnEmpty callback.
func (s *Store) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; ok {
		delete(s.rooms, code)
		log.Printf("room %s destroyed", code)
	}
}

// RoomsWith returns every live room the player currently occupies. In
// practice a player occupies at most one, but a disconnect sweep must not
// assume that.
func (s *Store) RoomsWith(playerID uuid.UUID) []*Room {
	// Snapshot the pointers first; membership checks need each room's own
	// lock, and a room emptying concurrently calls back into s.Delete.
	s.mu.Lock()
	all := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		all = append(all, r)
	}
	s.mu.Unlock()

	var out []*Room
	for _, r := range all {
		r.Mu.Lock()
		member := r.memberIndexLocked(playerID) >= 0
		r.Mu.Unlock()
		if member {
			out = append(out, r)
		}
	}
	return out
}

// generateCode draws codeLength symbols from the alphabet with crypto/rand.
func generateCode() string {
	buf := make([]byte, codeLength)
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}
