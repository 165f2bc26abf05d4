package session

import (
	"context"
	"time"
)

// Record is the advisory cache entry written at login. It is never the
// authority on whether a user is authenticated; the signed token is.
type Record struct {
	Subject   string    `json:"subject"`
	Provider  string    `json:"provider"`
	LoginTime time.Time `json:"login_time"`
}

// Store defines the session cache. Implementations are best-effort:
// callers treat every error as advisory and never surface it to clients.
type Store interface {
	Put(ctx context.Context, rec Record, ttl time.Duration) error
	Get(ctx context.Context, subject string) (*Record, error)
	Delete(ctx context.Context, subject string) error
}
