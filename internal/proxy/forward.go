package proxy

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"auth-gateway/internal/logger"
)

// Forwarder relays matched requests to their backend verbatim: same
// method, same body, headers minus Host and Content-Length. Nothing is
// retried; a transport failure is a generic gateway error.
type Forwarder struct {
	table  *Table
	client *http.Client
}

func NewForwarder(table *Table, timeout time.Duration) *Forwarder {
	return &Forwarder{
		table: table,
		client: &http.Client{
			Timeout: timeout,
			// Redirects from backends are relayed to the caller as-is.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Handle proxies one request. Unmatched paths get a 404 echoing the
// requested path.
func (f *Forwarder) Handle(c *gin.Context) {
	path := c.Request.URL.Path

	route := f.table.Match(path)
	if route == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
			"path":  path,
		})
		return
	}

	targetURL := route.TargetBase + f.table.Rewrite(path, route)
	if q := c.Request.URL.RawQuery; q != "" {
		targetURL += "?" + q
	}

	// The inbound request context propagates client cancellation to the
	// backend call.
	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gateway error"})
		return
	}
	copyHeaders(req.Header, c.Request.Header)

	resp, err := f.client.Do(req)
	if err != nil {
		logger.Error("proxy forward failed", map[string]any{
			"target": targetURL,
			"error":  err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gateway error"})
		return
	}
	defer resp.Body.Close()

	header := c.Writer.Header()
	for key, values := range resp.Header {
		if strings.EqualFold(key, "Content-Length") {
			continue
		}
		header[key] = values
	}

	c.Writer.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		logger.Warn("proxy response relay interrupted", map[string]any{
			"target": targetURL,
			"error":  err.Error(),
		})
	}
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if strings.EqualFold(key, "Host") || strings.EqualFold(key, "Content-Length") {
			continue
		}
		dst[key] = values
	}
}
