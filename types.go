package mymcp

import "encoding/json"

// ExecResult is the outcome of a single statement execution. It is a
// tagged record: read statements carry Rows (never nil after a
// successful select, even when empty), write statements carry the
// affected-row count and, when the driver reported one, the
// last-inserted identifier.
type ExecResult struct {
	// Type is the statement category that produced this result
	// ("select", "insert", "update", "delete", "ddl").
	Type string

	// RowCount is the number of rows returned (read statements, after
	// truncation) or affected (write statements).
	RowCount int64

	// Rows holds the result rows for read statements, column-name
	// keyed. Nil for write statements.
	Rows []map[string]interface{}

	// LastInsertID is set only when the driver reported a nonzero
	// last-inserted identifier. Absent means the driver had none to
	// report, not that retrieval failed silently.
	LastInsertID *int64
}

// MarshalJSON renders the two result shapes:
//
//	{"type":"select","rowcount":N,"rows":[...]}
//	{"type":"insert","rowcount":N,"last_insert_id":K}
//
// last_insert_id is omitted when absent; rows is always present for
// read results, as [] when the result set is empty.
func (r *ExecResult) MarshalJSON() ([]byte, error) {
	if r.Type == "select" {
		rows := r.Rows
		if rows == nil {
			rows = []map[string]interface{}{}
		}
		return json.Marshal(struct {
			Type     string                   `json:"type"`
			RowCount int64                    `json:"rowcount"`
			Rows     []map[string]interface{} `json:"rows"`
		}{r.Type, r.RowCount, rows})
	}
	return json.Marshal(struct {
		Type         string `json:"type"`
		RowCount     int64  `json:"rowcount"`
		LastInsertID *int64 `json:"last_insert_id,omitempty"`
	}{r.Type, r.RowCount, r.LastInsertID})
}

// WhoamiInfo describes the configured identity and its permissions.
// It never carries the password or the API key.
type WhoamiInfo struct {
	Mysql       WhoamiMysql       `json:"mysql"`
	Permissions WhoamiPermissions `json:"permissions"`
}

// WhoamiMysql is the connection descriptor portion of WhoamiInfo.
type WhoamiMysql struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
}

// WhoamiPermissions is the permission matrix portion of WhoamiInfo.
type WhoamiPermissions struct {
	Select  bool `json:"select"`
	Insert  bool `json:"insert"`
	Update  bool `json:"update"`
	Delete  bool `json:"delete"`
	DDL     bool `json:"ddl"`
	MaxRows int  `json:"max_rows"`
}
