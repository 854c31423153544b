package mymcp

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/nowonbun/nowonbun-mariadb-mcp/internal/apikey"
)

func TestRequestLength_WithArguments(t *testing.T) {
	t.Parallel()
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "query",
			Arguments: map[string]any{"sql": "SELECT 1"},
		},
	}
	length := requestLength(req)
	// {"sql":"SELECT 1"} = 18 bytes
	if length != 18 {
		t.Fatalf("expected request length 18, got %d", length)
	}
}

func TestRequestLength_NoArguments(t *testing.T) {
	t.Parallel()
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "whoami",
		},
	}
	if length := requestLength(req); length != 0 {
		t.Fatalf("expected request length 0 for no arguments, got %d", length)
	}
}

func TestResultLength_TextContent(t *testing.T) {
	t.Parallel()
	result := mcp.NewToolResultText("hello world")
	if length := resultLength(result); length != 11 {
		t.Fatalf("expected result length 11, got %d", length)
	}
}

func TestResultLength_Nil(t *testing.T) {
	t.Parallel()
	if length := resultLength(nil); length != 0 {
		t.Fatalf("expected result length 0 for nil result, got %d", length)
	}
}

// --- Auth gate wrapping ---

// staticHeaders is a HeaderLookup backed by a plain map.
type staticHeaders map[string]string

func (h staticHeaders) LookupHeader(name string) (string, bool) {
	v, ok := h[name]
	return v, ok && v != ""
}

func guardTestEngine(apiKey string) *MysqlMcp {
	return New(Config{
		Mysql: MysqlConfig{Host: "127.0.0.1", Port: 3306, User: "root", Database: "testdb"},
		Permissions: PermissionsConfig{
			Select: true,
		},
		Auth: AuthConfig{APIKey: apiKey, Header: "X-API-Key", AllowBearer: true},
	}, zerolog.New(os.Stderr).Level(zerolog.Disabled))
}

func TestGuardedToolHandler_NoKeyConfigured(t *testing.T) {
	t.Parallel()
	m := guardTestEngine("")

	called := false
	handler := m.guardedToolHandler("whoami", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("ok"), nil
	})

	result, err := handler(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !called {
		t.Fatal("expected inner handler to run when no key is configured")
	}
	if result.IsError {
		t.Fatal("expected success result")
	}
}

func TestGuardedToolHandler_MissingHeaders(t *testing.T) {
	t.Parallel()
	m := guardTestEngine("secret")

	called := false
	handler := m.guardedToolHandler("whoami", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("ok"), nil
	})

	// No headers in context: the stdio case with a key configured.
	result, err := handler(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if called {
		t.Fatal("expected inner handler to be skipped for unauthorized call")
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	text := result.Content[0].(mcp.TextContent).Text
	if !strings.HasPrefix(text, "unauthorized:") {
		t.Fatalf("expected unauthorized error, got %q", text)
	}
}

func TestGuardedToolHandler_ValidKey(t *testing.T) {
	t.Parallel()
	m := guardTestEngine("secret")

	handler := m.guardedToolHandler("whoami", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})

	ctx := apikey.WithHeaders(context.Background(), staticHeaders{"X-API-Key": "secret"})
	result, err := handler(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result: %v", result.Content)
	}
}

func TestGuardedToolHandler_InvalidKey(t *testing.T) {
	t.Parallel()
	m := guardTestEngine("secret")

	handler := m.guardedToolHandler("query", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})

	ctx := apikey.WithHeaders(context.Background(), staticHeaders{"X-API-Key": "wrong"})
	result, err := handler(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for invalid key")
	}
}
