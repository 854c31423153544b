package mymcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nowonbun/nowonbun-mariadb-mcp/internal/apikey"
)

// RegisterMCPTools registers query, whoami, and health as MCP tools on
// the given MCP server. Every handler is wrapped with request logging
// and, when an API key is configured, the auth gate.
func RegisterMCPTools(mcpServer *server.MCPServer, myMcp *MysqlMcp) {
	// query tool
	queryTool := mcp.NewTool("query",
		mcp.WithDescription("Execute a single SQL statement against the MySQL database. Returns results as JSON."),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("The SQL statement to execute"),
		),
		mcp.WithObject("params",
			mcp.Description("Optional named parameters, referenced as :name in the SQL"),
		),
	)

	mcpServer.AddTool(queryTool, myMcp.guardedToolHandler("query", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sqlText, err := req.RequireString("sql")
		if err != nil {
			return mcp.NewToolResultError("sql parameter is required"), nil
		}
		var args map[string]interface{}
		if raw, ok := req.GetArguments()["params"]; ok && raw != nil {
			args, ok = raw.(map[string]interface{})
			if !ok {
				return mcp.NewToolResultError("params must be an object mapping names to values"), nil
			}
		}
		result, err := myMcp.Execute(ctx, sqlText, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		jsonBytes, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError("failed to marshal query result"), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}))

	// whoami tool
	whoamiTool := mcp.NewTool("whoami",
		mcp.WithDescription("Report the configured MySQL identity and the permission matrix. Never includes credentials."),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(whoamiTool, myMcp.guardedToolHandler("whoami", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(myMcp.Whoami())
		if err != nil {
			return mcp.NewToolResultError("failed to marshal whoami result"), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}))

	// health tool
	healthTool := mcp.NewTool("health",
		mcp.WithDescription("Ping the database connection. Returns \"ok\" when the database is reachable."),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(healthTool, myMcp.guardedToolHandler("health", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := myMcp.Ping(ctx); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("ok"), nil
	}))
}

// guardedToolHandler wraps a tool handler with the auth gate and
// request/response logging. The gate short-circuits before the handler
// runs: an unauthorized call never reaches the execution engine.
func (m *MysqlMcp) guardedToolHandler(tool string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return m.loggedToolHandler(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		headers, _ := apikey.FromContext(ctx)
		if err := m.guard.Check(headers); err != nil {
			m.logger.Info().Str("tool", tool).Err(err).Msg("unauthorized tool call")
			return mcp.NewToolResultError(err.Error()), nil
		}
		return handler(ctx, req)
	})
}

// loggedToolHandler wraps a tool handler to log request and response lengths.
func (m *MysqlMcp) loggedToolHandler(tool string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		reqLen := requestLength(req)
		result, err := handler(ctx, req)
		respLen := resultLength(result)
		m.logger.Info().
			Str("tool", tool).
			Int("request_bytes", reqLen).
			Int("response_bytes", respLen).
			Msg("tool call")
		return result, err
	}
}

// requestLength returns the JSON-encoded byte length of the request arguments.
func requestLength(req mcp.CallToolRequest) int {
	args := req.GetArguments()
	if len(args) == 0 {
		return 0
	}
	b, err := json.Marshal(args)
	if err != nil {
		return 0
	}
	return len(b)
}

// resultLength returns the total byte length of text content in a CallToolResult.
func resultLength(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	total := 0
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			total += len(tc.Text)
		}
	}
	return total
}
