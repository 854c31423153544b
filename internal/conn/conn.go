// Package conn owns the single database connection handle.
package conn

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config carries the connection descriptor for the MySQL DSN.
type Config struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	ConnectTimeout time.Duration
}

// DSN builds the go-sql-driver DSN for the descriptor. Rows come back
// with ParseTime enabled and utf8mb4; autocommit is the driver default,
// so each statement is its own unit of work.
func (c Config) DSN() string {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	mc.User = c.User
	mc.Passwd = c.Password
	mc.DBName = c.Database
	mc.Timeout = c.ConnectTimeout
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// Manager owns at most one live *sql.DB handle: absent until the first
// Ensure, reused across calls, released exactly once by Close. The
// handle is capped to a single open connection, so "at most one live
// connection" holds even though *sql.DB is technically a pool.
//
// Manager does no locking of its own; callers serialize access (the
// engine's statement semaphore does this).
type Manager struct {
	open func() (*sql.DB, error)
	db   *sql.DB
}

// New creates a Manager that opens the configured MySQL DSN on first use.
func New(cfg Config) *Manager {
	dsn := cfg.DSN()
	return &Manager{
		open: func() (*sql.DB, error) {
			return sql.Open("mysql", dsn)
		},
	}
}

// NewWithOpener creates a Manager with a caller-supplied opener.
// Intended for embedding and tests; the Manager still owns and closes
// the returned handle.
func NewWithOpener(open func() (*sql.DB, error)) *Manager {
	return &Manager{open: open}
}

// Ensure returns the live handle, creating it if absent. Idempotent:
// repeated calls return the same handle. Callers never see a
// half-initialized handle — on error nothing is retained.
func (m *Manager) Ensure(ctx context.Context) (*sql.DB, error) {
	if m.db != nil {
		return m.db, nil
	}
	db, err := m.open()
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)
	m.db = db
	return db, nil
}

// Ping ensures a handle and issues a liveness probe. database/sql
// re-dials transparently when the underlying connection has gone away,
// which gives the reconnect-on-ping behavior without any retry logic
// here.
func (m *Manager) Ping(ctx context.Context) error {
	db, err := m.Ensure(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close releases the handle. Idempotent: returns nil when no handle
// was ever opened, and a second Close is a no-op.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}

// Connected reports whether a handle is currently held. Denials and
// validation failures must leave this false when nothing was opened
// before them.
func (m *Manager) Connected() bool {
	return m.db != nil
}
