package mymcp_test

import (
	"testing"

	mymcp "github.com/nowonbun/nowonbun-mariadb-mcp"
)

func TestDefaultServerConfig(t *testing.T) {
	t.Parallel()
	config := mymcp.DefaultServerConfig()

	if !config.Permissions.Select {
		t.Fatal("expected select to be enabled by default")
	}
	if config.Permissions.Insert || config.Permissions.Update || config.Permissions.Delete || config.Permissions.DDL {
		t.Fatal("expected write permissions to be disabled by default")
	}
	if config.Permissions.MaxRows != 1000 {
		t.Fatalf("expected default max_rows 1000, got %d", config.Permissions.MaxRows)
	}
	if config.Mysql.Host != "127.0.0.1" || config.Mysql.Port != 3306 {
		t.Fatalf("expected default mysql 127.0.0.1:3306, got %s:%d", config.Mysql.Host, config.Mysql.Port)
	}
	if config.Auth.APIKey != "" {
		t.Fatal("expected auth to be disabled by default")
	}
	if config.Auth.Header != "X-API-Key" || !config.Auth.AllowBearer {
		t.Fatalf("expected default auth header X-API-Key with bearer fallback, got %q / %v",
			config.Auth.Header, config.Auth.AllowBearer)
	}
	if config.Server.EndpointPath != "/mcp" || config.Server.Port != 3307 {
		t.Fatalf("expected default server :3307/mcp, got :%d%s", config.Server.Port, config.Server.EndpointPath)
	}
	if config.Logging.Level != "info" || config.Logging.Format != "json" || config.Logging.Output != "stderr" {
		t.Fatalf("unexpected default logging config: %+v", config.Logging)
	}
}

func TestNewPanicsOnInvalidPort(t *testing.T) {
	t.Parallel()
	for _, port := range []int{0, -1, 65536} {
		config := defaultConfig()
		config.Mysql.Port = port
		expectPanic(t, "mysql.port", func() {
			mymcp.New(config, testLogger())
		})
	}
}

func TestNewPanicsOnNegativeConnectTimeout(t *testing.T) {
	t.Parallel()
	config := defaultConfig()
	config.Mysql.ConnectTimeout = -1
	expectPanic(t, "connect_timeout", func() {
		mymcp.New(config, testLogger())
	})
}

func TestNewDefaultsZeroConnectTimeout(t *testing.T) {
	t.Parallel()
	config := defaultConfig()
	config.Mysql.ConnectTimeout = 0
	expectNoPanic(t, func() {
		mymcp.New(config, testLogger())
	})
}

func TestNewPanicsOnNegativeMaxRows(t *testing.T) {
	t.Parallel()
	config := defaultConfig()
	config.Permissions.MaxRows = -5
	expectPanic(t, "max_rows", func() {
		mymcp.New(config, testLogger())
	})
}

func TestNewAllowsZeroMaxRows(t *testing.T) {
	t.Parallel()
	config := defaultConfig()
	config.Permissions.MaxRows = 0
	expectNoPanic(t, func() {
		mymcp.New(config, testLogger())
	})
}

func TestNewPanicsOnInvalidSanitizationRegex(t *testing.T) {
	t.Parallel()
	config := defaultConfig()
	config.Sanitization = []mymcp.SanitizationRule{
		{Pattern: "[invalid(regex", Replacement: "***"},
	}
	expectPanic(t, "regex", func() {
		mymcp.New(config, testLogger())
	})
}

func TestNewPanicsOnInvalidErrorPromptRegex(t *testing.T) {
	t.Parallel()
	config := defaultConfig()
	config.ErrorPrompts = []mymcp.ErrorPromptRule{
		{Pattern: "(unclosed", Prompt: "check the table name"},
	}
	expectPanic(t, "regex", func() {
		mymcp.New(config, testLogger())
	})
}

func TestNewValidConfigDoesNotConnect(t *testing.T) {
	t.Parallel()
	engine, _, opens := newMockEngine(t, defaultConfig())
	if *opens != 0 {
		t.Fatalf("expected no connection at construction time, opener called %d times", *opens)
	}
	if engine.Connected() {
		t.Fatal("expected Connected() to be false before first statement")
	}
}
