package permission

import (
	"strings"

	"github.com/nowonbun/nowonbun-mariadb-mcp/internal/classify"
)

// Matrix is the per-category permission matrix. Each flag authorizes one
// statement category; categories without a flag are always denied.
type Matrix struct {
	Select bool
	Insert bool
	Update bool
	Delete bool
	DDL    bool
}

// DeniedError reports that the policy denies a statement category.
type DeniedError struct {
	Category classify.Category
}

func (e *DeniedError) Error() string {
	if e.Category == "" {
		return "permission denied"
	}
	return strings.ToUpper(string(e.Category)) + " permission denied"
}

// Check returns nil when the matrix authorizes cat, and a *DeniedError
// naming the denied capability otherwise. Categories outside the five
// flags (stored-procedure calls, grants, unrecognized tokens) have no
// flag to grant them and are always denied.
func (m Matrix) Check(cat classify.Category) error {
	allowed := false
	switch cat {
	case classify.Select:
		allowed = m.Select
	case classify.Insert:
		allowed = m.Insert
	case classify.Update:
		allowed = m.Update
	case classify.Delete:
		allowed = m.Delete
	case classify.DDL:
		allowed = m.DDL
	}
	if allowed {
		return nil
	}
	return &DeniedError{Category: cat}
}
