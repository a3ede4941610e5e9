// internal/handlers/identity.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mirohitka8-blip/faraon-multiplayer/internal/auth"
)

// EnsurePlayerToken resolves the stable player identity for a request. A
// valid player_token cookie yields its existing identity; otherwise a fresh
// identity is minted and the signed token set as a cookie. Must run before
// the websocket upgrade, while headers can still be written.
func EnsurePlayerToken(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if token := extractTokenFromCookie(r.Header.Get("Cookie")); token != "" {
		sub, err := auth.AuthenticatePlayerToken(token)
		if err == nil {
			id, parseErr := uuid.Parse(sub)
			if parseErr == nil {
				return id, nil
			}
		}
		// Fall through: an invalid or stale token is replaced, not rejected.
	}

	id := uuid.New()
	token, err := auth.CreatePlayerToken(id.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create player token: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "player_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})
	return id, nil
}

func extractTokenFromCookie(cookie string) string {
	parts := strings.Split(cookie, "player_token=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}
