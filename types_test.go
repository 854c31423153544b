package mymcp_test

import (
	"encoding/json"
	"testing"

	mymcp "github.com/nowonbun/nowonbun-mariadb-mcp"
)

func TestExecResultMarshalSelect(t *testing.T) {
	t.Parallel()
	result := &mymcp.ExecResult{
		Type:     "select",
		RowCount: 1,
		Rows:     []map[string]interface{}{{"x": 1}},
	}

	b, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"type":"select","rowcount":1,"rows":[{"x":1}]}`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, string(b))
	}
}

func TestExecResultMarshalSelectEmptyRows(t *testing.T) {
	t.Parallel()
	result := &mymcp.ExecResult{Type: "select", RowCount: 0}

	b, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	// rows must be present as [] even when the result set is empty.
	want := `{"type":"select","rowcount":0,"rows":[]}`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, string(b))
	}
}

func TestExecResultMarshalWrite(t *testing.T) {
	t.Parallel()
	result := &mymcp.ExecResult{Type: "update", RowCount: 3}

	b, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"type":"update","rowcount":3}`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, string(b))
	}
}

func TestExecResultMarshalInsertWithLastInsertID(t *testing.T) {
	t.Parallel()
	id := int64(42)
	result := &mymcp.ExecResult{Type: "insert", RowCount: 1, LastInsertID: &id}

	b, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"type":"insert","rowcount":1,"last_insert_id":42}`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, string(b))
	}
}

func TestWhoamiInfoMarshal(t *testing.T) {
	t.Parallel()
	info := mymcp.WhoamiInfo{
		Mysql: mymcp.WhoamiMysql{
			Host:     "db.internal",
			Port:     3306,
			Database: "shop",
			User:     "app",
		},
		Permissions: mymcp.WhoamiPermissions{
			Select:  true,
			Insert:  true,
			MaxRows: 500,
		},
	}

	b, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	mysqlObj := decoded["mysql"].(map[string]interface{})
	if mysqlObj["host"] != "db.internal" || mysqlObj["database"] != "shop" {
		t.Fatalf("unexpected mysql section: %v", mysqlObj)
	}
	if _, ok := mysqlObj["password"]; ok {
		t.Fatal("whoami output must not contain a password field")
	}

	perms := decoded["permissions"].(map[string]interface{})
	if perms["select"] != true || perms["insert"] != true || perms["ddl"] != false {
		t.Fatalf("unexpected permissions section: %v", perms)
	}
	if perms["max_rows"] != float64(500) {
		t.Fatalf("expected max_rows 500, got %v", perms["max_rows"])
	}
}
