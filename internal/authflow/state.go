package authflow

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	stateCookieName = "__oauth_state"
	stateTTL        = 5 * time.Minute
)

// setStateCookie generates a fresh anti-CSRF state value and persists it
// so the callback can verify the provider round-tripped it unchanged.
func (h *Handler) setStateCookie(c *gin.Context) string {
	state := uuid.New().String()

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookies.Secure(),
		SameSite: h.cookies.SameSite(),
		MaxAge:   int(stateTTL.Seconds()),
	})

	return state
}

func (h *Handler) validateState(c *gin.Context, state string) bool {
	if state == "" {
		return false
	}

	ck, err := c.Request.Cookie(stateCookieName)
	if err != nil {
		return false
	}
	if ck.Value != state {
		return false
	}

	// One use per value: expire the cookie so the same state cannot be
	// replayed within its TTL.
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookies.Secure(),
		SameSite: h.cookies.SameSite(),
		MaxAge:   -1,
	})

	return true
}
