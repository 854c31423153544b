package classify

import "strings"

// Category is the coarse classification of a SQL statement, used purely
// for authorization. Recognized categories are the five constants below;
// any other leading keyword becomes its own lower-cased Category and is
// never authorized.
type Category string

const (
	Select Category = "select"
	Insert Category = "insert"
	Update Category = "update"
	Delete Category = "delete"
	DDL    Category = "ddl"
)

// keywords maps recognized leading keywords to their category.
var keywords = map[string]Category{
	"select":   Select,
	"show":     Select,
	"describe": Select,
	"desc":     Select,
	"explain":  Select,
	"insert":   Insert,
	"replace":  Insert,
	"update":   Update,
	"delete":   Delete,
	"create":   DDL,
	"alter":    DDL,
	"drop":     DDL,
	"truncate": DDL,
}

// Statement classifies sql by its first keyword. Leading whitespace and
// open parentheses are stripped so "(SELECT ...)" classifies as select.
// Statements with no token at all classify as the empty Category.
//
// This is a lexical heuristic, not a parser: it does not validate SQL
// syntax and does not detect statement kinds hidden behind comments,
// CTEs, or stored-procedure bodies.
func Statement(sql string) Category {
	s := strings.TrimSpace(sql)
	s = strings.TrimLeft(s, "(")
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Category("")
	}
	token := strings.ToLower(fields[0])
	if cat, ok := keywords[token]; ok {
		return cat
	}
	return Category(token)
}
