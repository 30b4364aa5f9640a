package handlers

import (
	"net/http"
	"strings"
	"time"

	"targetgame/internal/game"
)

const (
	profileCookieName = "targetgame_profile"
	profileCookieTTL  = 365 * 24 * time.Hour
	maxProfileID      = 64
)

// profileID returns the caller's profile, issuing a new one on first visit.
func profileID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(profileCookieName); err == nil {
		if id := strings.TrimSpace(cookie.Value); id != "" && len(id) <= maxProfileID {
			return id
		}
	}
	id := game.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     profileCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(profileCookieTTL),
	})
	return id
}
