package mymcp_test

import (
	"database/sql"
	"os"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"

	mymcp "github.com/nowonbun/nowonbun-mariadb-mcp"
)

// testLogger returns a disabled zerolog logger for tests.
func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

// defaultConfig returns a valid read-only Config for testing.
func defaultConfig() mymcp.Config {
	return mymcp.Config{
		Mysql: mymcp.MysqlConfig{
			Host:           "127.0.0.1",
			Port:           3306,
			User:           "root",
			Database:       "testdb",
			ConnectTimeout: 5,
		},
		Permissions: mymcp.PermissionsConfig{
			Select:  true,
			MaxRows: 1000,
		},
	}
}

// newMockEngine creates a MysqlMcp backed by a sqlmock database. The
// returned open counter reports how many times the opener was called:
// it must stay at zero for calls that are rejected before execution.
func newMockEngine(t *testing.T, config mymcp.Config) (*mymcp.MysqlMcp, sqlmock.Sqlmock, *int) {
	t.Helper()

	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(true),
	)
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	opens := 0
	engine := mymcp.New(config, testLogger(), mymcp.WithOpener(func() (*sql.DB, error) {
		opens++
		return db, nil
	}))
	t.Cleanup(func() {
		_ = engine.Close()
		_ = db.Close()
	})
	return engine, mock, &opens
}

// expectPanic calls f and asserts that it panics with a message containing substr.
func expectPanic(t *testing.T, substr string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q, but no panic occurred", substr)
		}
		msg := ""
		switch v := r.(type) {
		case string:
			msg = v
		case error:
			msg = v.Error()
		default:
			t.Fatalf("expected panic string/error containing %q, got %T: %v", substr, r, r)
		}
		if !strings.Contains(msg, substr) {
			t.Fatalf("expected panic containing %q, got %q", substr, msg)
		}
	}()
	f()
}

// expectNoPanic calls f and asserts that it does NOT panic.
func expectNoPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	f()
}
