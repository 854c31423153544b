package mymcp

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nowonbun/nowonbun-mariadb-mcp/internal/apikey"
	"github.com/nowonbun/nowonbun-mariadb-mcp/internal/conn"
	"github.com/nowonbun/nowonbun-mariadb-mcp/internal/errprompt"
	"github.com/nowonbun/nowonbun-mariadb-mcp/internal/permission"
	"github.com/nowonbun/nowonbun-mariadb-mcp/internal/sanitize"
)

// MysqlMcp is the core engine that provides the query, whoami, and
// health tools. Statement calls are serialized through an internal
// one-slot semaphore: at most one statement is in flight per instance.
type MysqlMcp struct {
	config     Config
	conns      *conn.Manager
	semaphore  chan struct{}
	matrix     permission.Matrix
	guard      apikey.Guard
	sanitizer  *sanitize.Sanitizer
	errPrompts *errprompt.Matcher
	logger     zerolog.Logger
}

// Option is a functional option for New().
type Option func(*options)

type options struct {
	opener func() (*sql.DB, error)
}

// WithOpener replaces the default connection opener (sql.Open against
// the configured MySQL DSN). Intended for embedding and tests; the
// returned handle is still owned and closed by the engine.
func WithOpener(opener func() (*sql.DB, error)) Option {
	return func(o *options) {
		o.opener = opener
	}
}

// New creates a new MysqlMcp instance. The database connection is not
// opened here; it is established lazily on the first statement or
// health check. Panics on invalid config.
func New(config Config, logger zerolog.Logger, opts ...Option) *MysqlMcp {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// --- Config validation (panics on invalid config) ---

	if config.Mysql.Port < 1 || config.Mysql.Port > 65535 {
		panic("mymcp: mysql.port must be between 1 and 65535")
	}
	if config.Mysql.ConnectTimeout == 0 {
		config.Mysql.ConnectTimeout = 5
	}
	if config.Mysql.ConnectTimeout < 0 {
		panic("mymcp: mysql.connect_timeout must be > 0")
	}
	if config.Permissions.MaxRows < 0 {
		panic("mymcp: permissions.max_rows must be >= 0")
	}

	san, err := sanitize.New(mapSanitizationRules(config.Sanitization))
	if err != nil {
		panic(fmt.Sprintf("mymcp: %v", err))
	}
	matcher, err := errprompt.NewMatcher(mapErrorPromptRules(config.ErrorPrompts))
	if err != nil {
		panic(fmt.Sprintf("mymcp: %v", err))
	}

	manager := conn.New(conn.Config{
		Host:           config.Mysql.Host,
		Port:           config.Mysql.Port,
		User:           config.Mysql.User,
		Password:       config.Mysql.Password,
		Database:       config.Mysql.Database,
		ConnectTimeout: time.Duration(config.Mysql.ConnectTimeout) * time.Second,
	})
	if o.opener != nil {
		manager = conn.NewWithOpener(o.opener)
	}

	return &MysqlMcp{
		config: config,
		conns:  manager,
		// One slot: single-connection, non-pooled design.
		semaphore: make(chan struct{}, 1),
		matrix: permission.Matrix{
			Select: config.Permissions.Select,
			Insert: config.Permissions.Insert,
			Update: config.Permissions.Update,
			Delete: config.Permissions.Delete,
			DDL:    config.Permissions.DDL,
		},
		guard: apikey.Guard{
			Key:         config.Auth.APIKey,
			Header:      config.Auth.Header,
			AllowBearer: config.Auth.AllowBearer,
		},
		sanitizer:  san,
		errPrompts: matcher,
		logger:     logger,
	}
}

// Ping ensures a live connection and issues a liveness probe. The probe
// goes through the same semaphore as statements, so it never races an
// in-flight statement on the single connection.
func (m *MysqlMcp) Ping(ctx context.Context) error {
	select {
	case m.semaphore <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("failed to acquire statement slot, context cancelled while waiting: %w", ctx.Err())
	}
	defer func() { <-m.semaphore }()

	return m.conns.Ping(ctx)
}

// Whoami reports the configured identity and permission matrix. The
// output is stable for an unchanged config and never includes the
// password or the API key.
func (m *MysqlMcp) Whoami() WhoamiInfo {
	return WhoamiInfo{
		Mysql: WhoamiMysql{
			Host:     m.config.Mysql.Host,
			Port:     m.config.Mysql.Port,
			Database: m.config.Mysql.Database,
			User:     m.config.Mysql.User,
		},
		Permissions: WhoamiPermissions{
			Select:  m.config.Permissions.Select,
			Insert:  m.config.Permissions.Insert,
			Update:  m.config.Permissions.Update,
			Delete:  m.config.Permissions.Delete,
			DDL:     m.config.Permissions.DDL,
			MaxRows: m.config.Permissions.MaxRows,
		},
	}
}

// Close releases the database connection. Idempotent: safe to call
// when no connection was ever opened, and safe to call twice.
func (m *MysqlMcp) Close() error {
	return m.conns.Close()
}

// Connected reports whether the engine holds a live connection handle.
func (m *MysqlMcp) Connected() bool {
	return m.conns.Connected()
}

// mapSanitizationRules converts config rules to internal sanitize.Rules.
func mapSanitizationRules(rules []SanitizationRule) []sanitize.Rule {
	result := make([]sanitize.Rule, len(rules))
	for i, r := range rules {
		result[i] = sanitize.Rule{
			Pattern:     r.Pattern,
			Replacement: r.Replacement,
		}
	}
	return result
}

// mapErrorPromptRules converts config rules to internal errprompt.Rules.
func mapErrorPromptRules(rules []ErrorPromptRule) []errprompt.Rule {
	result := make([]errprompt.Rule, len(rules))
	for i, r := range rules {
		result[i] = errprompt.Rule{
			Pattern: r.Pattern,
			Message: r.Prompt,
		}
	}
	return result
}
