// Package mymcp provides policy-gated MySQL/MariaDB access for AI
// agents through the Model Context Protocol (MCP).
//
// It exposes three tools — query, whoami, and health — backed by a
// statement classification and permission-enforcement engine. Every
// submitted SQL string is classified by its first keyword
// (select/insert/update/delete/ddl), checked against a declarative
// permission matrix, and only then executed against a single lazily
// opened connection. Unrecognized statement shapes (CALL, GRANT, SET,
// ...) have no permission flag and are always denied.
//
// Read results are fetched in full, sanitized by configured regex
// rules, and truncated in memory to the configured row cap. Write
// results carry the affected-row count and, when the driver reported
// one, the last-inserted identifier. Multi-statement batches are
// rejected before classification.
//
// # Library Usage
//
//	m := mymcp.New(mymcp.Config{
//		Mysql:       mymcp.MysqlConfig{Host: "127.0.0.1", Port: 3306, User: "app", Database: "shop"},
//		Permissions: mymcp.PermissionsConfig{Select: true, MaxRows: 1000},
//	}, logger)
//	defer m.Close()
//
//	// Use directly
//	result, err := m.Execute(ctx, "SELECT * FROM orders WHERE id = :id", map[string]interface{}{"id": 7})
//
//	// Or register as MCP tools
//	mymcp.RegisterMCPTools(mcpServer, m)
//
// The classifier is a lexical heuristic, not a SQL parser: it looks at
// the first whitespace-delimited token after stripping leading
// parentheses. Statement kinds hidden behind comments or CTEs are not
// detected; they fall into the always-denied fallback instead.
//
// Parameter values are passed through the driver's substitution
// channel (:name placeholders become ?), never interpolated into the
// SQL text.
package mymcp
