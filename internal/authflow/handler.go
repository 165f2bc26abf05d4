package authflow

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"auth-gateway/internal/audit"
	"auth-gateway/internal/cookie"
	"auth-gateway/internal/logger"
	"auth-gateway/internal/provider"
	"auth-gateway/internal/session"
	"auth-gateway/internal/token"
)

// detachedTimeout bounds the best-effort cache and audit writes that
// outlive the request that spawned them.
const detachedTimeout = 3 * time.Second

type Handler struct {
	providers    *provider.Registry
	tokens       *token.Service
	sessions     session.Store // nil when the cache is unavailable
	cookies      *cookie.Transport
	recorder     audit.Recorder
	frontendBase string
}

func NewHandler(
	registry *provider.Registry,
	tokens *token.Service,
	sessions session.Store,
	cookies *cookie.Transport,
	recorder audit.Recorder,
	frontendBase string,
) *Handler {
	return &Handler{
		providers:    registry,
		tokens:       tokens,
		sessions:     sessions,
		cookies:      cookies,
		recorder:     recorder,
		frontendBase: strings.TrimSuffix(frontendBase, "/"),
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/auth/:provider/login", h.login)
	r.GET("/auth/:provider/callback", h.callback)
	r.GET("/auth/me", h.me)
	r.POST("/auth/refresh", h.refresh)
	r.POST("/auth/logout", h.logout)
}

// login returns the provider's consent-screen URL. For providers that use
// an anti-CSRF state value, the value is persisted in a short-lived cookie
// and re-checked on callback.
func (h *Handler) login(c *gin.Context) {
	p, err := h.providers.Get(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown oauth provider"})
		return
	}

	var state string
	if p.UsesState() {
		state = h.setStateCookie(c)
	}

	c.JSON(http.StatusOK, gin.H{"authUrl": p.AuthCodeURL(state)})
}

// callback drives the login state machine: exchange the code, resolve the
// identity, issue tokens, then cache and audit best-effort. Any upstream
// failure aborts with no cookies set.
func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown oauth provider"})
		return
	}

	state := c.Query("state")
	if p.UsesState() && !h.validateState(c, state) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid state"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	providerToken, err := p.ExchangeCode(c.Request.Context(), code, state)
	if err != nil {
		logger.Error("token exchange failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "authentication failed"})
		return
	}

	identity, err := p.FetchIdentity(c.Request.Context(), providerToken)
	if err != nil {
		logger.Error("identity fetch failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "authentication failed"})
		return
	}

	pair, err := h.tokens.Issue(identity.ID)
	if err != nil {
		logger.Error("token issue failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "authentication failed"})
		return
	}

	loginTime := time.Now()
	h.cacheSession(session.Record{
		Subject:   identity.ID,
		Provider:  identity.Provider,
		LoginTime: loginTime,
	})
	h.recordLogin(audit.Entry{
		Subject:   identity.ID,
		Provider:  identity.Provider,
		LoginTime: loginTime,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	h.cookies.AttachLoginCookies(c.Writer, pair)

	logger.Info("login succeeded", map[string]any{
		"provider": providerName,
		"subject":  identity.ID,
	})

	c.Redirect(http.StatusFound, h.frontendBase+"/login/"+providerName+"/callback")
}

// me reports the authenticated subject from the access cookie.
func (h *Handler) me(c *gin.Context) {
	accessToken := cookie.ReadToken(cookie.AccessName, c.Request)
	if accessToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	subject, err := h.tokens.Validate(accessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": subject})
}

// refresh issues a new access token from the refresh cookie. The refresh
// token is not rotated.
func (h *Handler) refresh(c *gin.Context) {
	refreshToken := cookie.ReadToken(cookie.RefreshName, c.Request)
	if refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	accessToken, expiry, err := h.tokens.Refresh(refreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	h.cookies.AttachAccessCookie(c.Writer, accessToken, expiry)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// logout clears both cookies unconditionally and drops the cached session
// when the access token still identifies a subject. Always succeeds.
func (h *Handler) logout(c *gin.Context) {
	if accessToken := cookie.ReadToken(cookie.AccessName, c.Request); accessToken != "" {
		if subject, err := h.tokens.Validate(accessToken); err == nil {
			h.dropSession(subject)
		}
	}

	h.cookies.AttachLogoutCookies(c.Writer)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// cacheSession writes the advisory session record in a detached goroutine.
// Login never fails because the cache is unavailable.
func (h *Handler) cacheSession(rec session.Record) {
	if h.sessions == nil {
		return
	}
	ttl := h.tokens.RefreshTTL()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), detachedTimeout)
		defer cancel()
		if err := h.sessions.Put(ctx, rec, ttl); err != nil {
			logger.Warn("session cache write failed", map[string]any{
				"subject": rec.Subject,
				"error":   err.Error(),
			})
		}
	}()
}

func (h *Handler) dropSession(subject string) {
	if h.sessions == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), detachedTimeout)
		defer cancel()
		if err := h.sessions.Delete(ctx, subject); err != nil {
			logger.Warn("session cache delete failed", map[string]any{
				"subject": subject,
				"error":   err.Error(),
			})
		}
	}()
}

// recordLogin writes the audit entry in a detached goroutine.
func (h *Handler) recordLogin(e audit.Entry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), detachedTimeout)
		defer cancel()
		if err := h.recorder.Record(ctx, e); err != nil {
			logger.Warn("login audit write failed", map[string]any{
				"subject": e.Subject,
				"error":   err.Error(),
			})
		}
	}()
}
