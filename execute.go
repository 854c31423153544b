package mymcp

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nowonbun/nowonbun-mariadb-mcp/internal/classify"
	"github.com/nowonbun/nowonbun-mariadb-mcp/internal/params"
)

// Execute runs a single SQL statement through the full pipeline:
// validate, classify, authorize, expand parameters, execute, shape.
// Each step is a hard precondition for the next: validation and
// authorization failures return before any connection side effect.
//
// Errors are typed: *ValidationError for malformed input,
// *permission.DeniedError for policy denials, and raw driver errors
// (optionally suffixed with configured guidance) for everything the
// database rejects.
func (m *MysqlMcp) Execute(ctx context.Context, sqlText string, args map[string]interface{}) (*ExecResult, error) {
	startTime := time.Now()

	// 1. Acquire the statement slot (respects context cancellation).
	select {
	case m.semaphore <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to acquire statement slot, context cancelled while waiting: %w", ctx.Err())
	}
	defer func() { <-m.semaphore }()

	// 2. Validate: non-empty, single statement.
	trimmed := strings.TrimSpace(sqlText)
	if trimmed == "" {
		return nil, &ValidationError{Msg: "sql must be a non-empty string"}
	}
	// One trailing separator is tolerated; any other separator means a
	// multi-statement batch. Separators inside string literals are
	// rejected too — conservative on purpose, a batch must never let
	// one authorized statement smuggle a second one.
	body := strings.TrimSuffix(trimmed, ";")
	if strings.Contains(body, ";") {
		m.logger.Info().Str("sql", truncateForLog(trimmed, 200)).Msg("multi-statement rejected")
		return nil, &ValidationError{Msg: "multi-statement queries are not allowed"}
	}
	stmt := strings.TrimSpace(body)
	if stmt == "" {
		return nil, &ValidationError{Msg: "sql must be a non-empty string"}
	}

	// 3. Classify and 4. authorize, before any connection is opened.
	category := classify.Statement(stmt)
	if err := m.matrix.Check(category); err != nil {
		m.logger.Info().
			Str("category", string(category)).
			Str("sql", truncateForLog(stmt, 200)).
			Msg("statement denied")
		return nil, err
	}

	// 5. Expand :name placeholders into driver placeholders. Values go
	// through the driver's parameter channel, never into the SQL text.
	query, queryArgs, err := params.Expand(stmt, args)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	// 6. Ensure a live connection.
	db, err := m.conns.Ensure(ctx)
	if err != nil {
		return nil, m.driverError(err)
	}

	// 7. Run and shape.
	var result *ExecResult
	if category == classify.Select {
		result, err = m.runSelect(ctx, db, query, queryArgs)
	} else {
		result, err = m.runWrite(ctx, db, category, query, queryArgs)
	}
	if err != nil {
		return nil, m.driverError(err)
	}

	m.logger.Info().
		Str("category", string(category)).
		Str("sql", truncateForLog(stmt, 200)).
		Dur("duration", time.Since(startTime)).
		Int64("rowcount", result.RowCount).
		Msg("statement executed")

	return result, nil
}

// runSelect fetches all rows, sanitizes string values, and truncates
// in memory to the configured cap. Truncation never sets a LIMIT on
// the wire statement, so RowCount reflects the returned row count, not
// the underlying result-set size.
func (m *MysqlMcp) runSelect(ctx context.Context, db queryer, query string, args []interface{}) (*ExecResult, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	resultRows, err := collectRows(rows)
	if err != nil {
		return nil, err
	}

	resultRows = m.sanitizer.Apply(resultRows)

	if limit := m.config.Permissions.MaxRows; limit > 0 && len(resultRows) > limit {
		resultRows = resultRows[:limit]
	}

	return &ExecResult{
		Type:     "select",
		RowCount: int64(len(resultRows)),
		Rows:     resultRows,
	}, nil
}

// runWrite executes a write statement and shapes the driver-reported
// counters. RowsAffected and LastInsertId are best effort: a retrieval
// failure leaves the field at its zero/absent value instead of failing
// the call.
func (m *MysqlMcp) runWrite(ctx context.Context, db queryer, category classify.Category, query string, args []interface{}) (*ExecResult, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	result := &ExecResult{Type: string(category)}
	if affected, err := res.RowsAffected(); err == nil {
		result.RowCount = affected
	}
	// MySQL reports 0 for statements without an AUTO_INCREMENT insert;
	// only a positive id is a real row identifier.
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		result.LastInsertID = &id
	}
	return result, nil
}

// queryer is the slice of *sql.DB the pipeline needs.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// collectRows reads all rows into column-name-keyed maps.
func collectRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	resultRows := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		scanArgs := make([]interface{}, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = convertValue(values[i])
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return resultRows, nil
}

// convertValue converts a driver-returned value to a JSON-friendly Go
// type. The MySQL text protocol returns most values as []byte.
func convertValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return val
	}
}

// driverError logs a database failure and appends any configured
// error-prompt guidance to the message.
func (m *MysqlMcp) driverError(err error) error {
	errMsg := err.Error()
	prompt := m.errPrompts.Match(errMsg)
	patterns := m.errPrompts.MatchedPatterns(errMsg)

	logEvent := m.logger.Error().Err(err)
	if len(patterns) > 0 {
		logEvent = logEvent.Strs("error_prompts", patterns)
	}
	logEvent.Msg("statement error")

	if prompt != "" {
		return fmt.Errorf("%w\n\n%s", err, prompt)
	}
	return err
}

// truncateForLog truncates a string for log output to avoid oversized log entries.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	truncateAt := maxLen
	for truncateAt > 0 && !utf8.RuneStart(s[truncateAt]) {
		truncateAt--
	}
	return s[:truncateAt] + "...[truncated]"
}
