// Package audit records login events to an insert-only log. Writes are
// fire-and-forget: a failed record never affects the login response.
package audit

import (
	"context"
	"database/sql"
	"time"
)

// Entry is one login event.
type Entry struct {
	Subject   string
	Provider  string
	LoginTime time.Time
	ClientIP  string
	UserAgent string
}

// Recorder persists login entries. Implementations must tolerate being
// called from detached goroutines with short-lived contexts.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// NopRecorder drops every entry. Used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) error { return nil }

const schema = `
CREATE TABLE IF NOT EXISTS login_logs (
    id bigserial PRIMARY KEY,
    user_id text NOT NULL,
    provider text NOT NULL,
    login_time timestamptz NOT NULL,
    ip_address varchar(50),
    user_agent varchar(500),
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS login_logs_user_id_idx
ON login_logs (user_id);
`

// PostgresRecorder appends login entries to the login_logs table.
type PostgresRecorder struct {
	db *sql.DB
}

func NewPostgresRecorder(ctx context.Context, db *sql.DB) (*PostgresRecorder, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, err
	}
	return &PostgresRecorder{db: db}, nil
}

func (r *PostgresRecorder) Record(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_logs (user_id, provider, login_time, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5)
	`,
		e.Subject,
		e.Provider,
		e.LoginTime,
		e.ClientIP,
		e.UserAgent,
	)
	return err
}
