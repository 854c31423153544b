package permission

import (
	"errors"
	"testing"

	"github.com/nowonbun/nowonbun-mariadb-mcp/internal/classify"
)

// helper: read-only matrix (the default posture).
func readOnlyMatrix() Matrix {
	return Matrix{Select: true}
}

// helper: matrix with every flag set.
func allAllowedMatrix() Matrix {
	return Matrix{Select: true, Insert: true, Update: true, Delete: true, DDL: true}
}

func assertDenied(t *testing.T, m Matrix, cat classify.Category, wantMsg string) {
	t.Helper()
	err := m.Check(cat)
	if err == nil {
		t.Fatalf("expected %q to be denied, got nil", cat)
	}
	var denied *DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected *DeniedError, got %T: %v", err, err)
	}
	if err.Error() != wantMsg {
		t.Fatalf("expected message %q, got %q", wantMsg, err.Error())
	}
}

func assertAllowed(t *testing.T, m Matrix, cat classify.Category) {
	t.Helper()
	if err := m.Check(cat); err != nil {
		t.Fatalf("expected %q to be allowed, got error: %v", cat, err)
	}
}

// --- Per-Flag Checks ---

func TestSelect_AllowedByDefault(t *testing.T) {
	t.Parallel()
	assertAllowed(t, readOnlyMatrix(), classify.Select)
}

func TestSelect_DeniedWhenOff(t *testing.T) {
	t.Parallel()
	assertDenied(t, Matrix{}, classify.Select, "SELECT permission denied")
}

func TestInsert_DeniedByDefault(t *testing.T) {
	t.Parallel()
	assertDenied(t, readOnlyMatrix(), classify.Insert, "INSERT permission denied")
}

func TestInsert_AllowedWhenOn(t *testing.T) {
	t.Parallel()
	assertAllowed(t, Matrix{Insert: true}, classify.Insert)
}

func TestUpdate_DeniedByDefault(t *testing.T) {
	t.Parallel()
	assertDenied(t, readOnlyMatrix(), classify.Update, "UPDATE permission denied")
}

func TestUpdate_AllowedWhenOn(t *testing.T) {
	t.Parallel()
	assertAllowed(t, Matrix{Update: true}, classify.Update)
}

func TestDelete_DeniedByDefault(t *testing.T) {
	t.Parallel()
	assertDenied(t, readOnlyMatrix(), classify.Delete, "DELETE permission denied")
}

func TestDelete_AllowedWhenOn(t *testing.T) {
	t.Parallel()
	assertAllowed(t, Matrix{Delete: true}, classify.Delete)
}

func TestDDL_DeniedByDefault(t *testing.T) {
	t.Parallel()
	assertDenied(t, readOnlyMatrix(), classify.DDL, "DDL permission denied")
}

func TestDDL_AllowedWhenOn(t *testing.T) {
	t.Parallel()
	assertAllowed(t, Matrix{DDL: true}, classify.DDL)
}

// --- Fallback Categories ---

func TestFallback_CallDeniedEvenWhenAllFlagsSet(t *testing.T) {
	t.Parallel()
	assertDenied(t, allAllowedMatrix(), classify.Category("call"), "CALL permission denied")
}

func TestFallback_GrantDenied(t *testing.T) {
	t.Parallel()
	assertDenied(t, allAllowedMatrix(), classify.Category("grant"), "GRANT permission denied")
}

func TestFallback_EmptyCategoryDenied(t *testing.T) {
	t.Parallel()
	assertDenied(t, allAllowedMatrix(), classify.Category(""), "permission denied")
}

// --- Message Shape ---

func TestDeniedMessage_MatchesClassifierOutput(t *testing.T) {
	t.Parallel()
	// The classifier lower-cases tokens; the denial names them upper-cased.
	cat := classify.Statement("call my_proc()")
	assertDenied(t, allAllowedMatrix(), cat, "CALL permission denied")
}
