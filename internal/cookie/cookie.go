package cookie

import (
	"fmt"
	"net/http"
	"time"

	"auth-gateway/internal/token"
)

const (
	AccessName  = "access"
	RefreshName = "refresh"
)

// Transport encodes token pairs as HttpOnly cookies and reads them back.
// Secure and SameSite apply process-wide to every cookie it emits.
type Transport struct {
	secure   bool
	sameSite http.SameSite
	now      func() time.Time
}

// NewTransport fails on SameSite=None without Secure: browsers discard
// such cookies, so the misconfiguration must not survive startup.
func NewTransport(secure bool, sameSite http.SameSite) (*Transport, error) {
	if sameSite == http.SameSiteNoneMode && !secure {
		return nil, fmt.Errorf("cookie: SameSite=None requires Secure")
	}
	return &Transport{
		secure:   secure,
		sameSite: sameSite,
		now:      time.Now,
	}, nil
}

// Secure reports the process-wide Secure attribute.
func (t *Transport) Secure() bool { return t.secure }

// SameSite reports the process-wide SameSite attribute.
func (t *Transport) SameSite() http.SameSite { return t.sameSite }

// AttachLoginCookies sets the access and refresh cookies, each with
// MaxAge equal to the remaining token lifetime in seconds.
func (t *Transport) AttachLoginCookies(w http.ResponseWriter, pair token.Pair) {
	t.set(w, AccessName, pair.AccessToken, t.remaining(pair.AccessExpiry))
	t.set(w, RefreshName, pair.RefreshToken, t.remaining(pair.RefreshExpiry))
}

// AttachAccessCookie replaces only the access cookie; used on refresh.
func (t *Transport) AttachAccessCookie(w http.ResponseWriter, accessToken string, expiry time.Time) {
	t.set(w, AccessName, accessToken, t.remaining(expiry))
}

// AttachLogoutCookies clears both cookies with MaxAge=0 so browsers drop
// them immediately, regardless of whether a session existed.
func (t *Transport) AttachLogoutCookies(w http.ResponseWriter) {
	t.clear(w, AccessName)
	t.clear(w, RefreshName)
}

// ReadToken returns the named cookie's value, or "" when absent.
func ReadToken(name string, r *http.Request) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (t *Transport) remaining(expiry time.Time) int {
	secs := int(expiry.Sub(t.now()).Seconds())
	if secs <= 0 {
		// MaxAge=0 would emit no Max-Age attribute at all, leaving a
		// session cookie that outlives the token. -1 emits Max-Age=0.
		return -1
	}
	return secs
}

func (t *Transport) set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: t.sameSite,
	})
}

func (t *Transport) clear(w http.ResponseWriter, name string) {
	// MaxAge < 0 emits Max-Age=0 on the wire.
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: t.sameSite,
	})
}
