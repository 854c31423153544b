// Package params expands :name placeholders into driver placeholders.
package params

import "fmt"

// Expand rewrites :name placeholders in sql into ? placeholders and
// returns the argument values in order of appearance. Placeholders
// inside single-quoted, double-quoted, or backtick-quoted runs are left
// untouched. A name may repeat; its value is appended once per
// occurrence. Keys in args that the statement never references are
// ignored. A referenced name missing from args is an error.
//
// With a nil or empty args map the statement passes through unchanged,
// so statements that use literal colons (e.g. in string values) without
// named parameters still work.
func Expand(sql string, args map[string]interface{}) (string, []interface{}, error) {
	if len(args) == 0 && !hasPlaceholder(sql) {
		return sql, nil, nil
	}

	var out []byte
	var values []interface{}
	var quote byte // 0 when outside a quoted run

	for i := 0; i < len(sql); i++ {
		c := sql[i]

		if quote != 0 {
			out = append(out, c)
			// Backslash escapes only apply inside ' and " runs.
			if c == '\\' && quote != '`' && i+1 < len(sql) {
				i++
				out = append(out, sql[i])
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"', '`':
			quote = c
			out = append(out, c)
		case ':':
			name, width := readName(sql[i+1:])
			if width == 0 {
				out = append(out, c)
				continue
			}
			value, ok := args[name]
			if !ok {
				return "", nil, fmt.Errorf("parameter %q is not bound", ":"+name)
			}
			out = append(out, '?')
			values = append(values, value)
			i += width
		default:
			out = append(out, c)
		}
	}

	return string(out), values, nil
}

// readName reads a parameter name ([A-Za-z_][A-Za-z0-9_]*) from the
// start of s. Returns the name and its byte width, 0 when s does not
// start a name.
func readName(s string) (string, int) {
	if len(s) == 0 || !isNameStart(s[0]) {
		return "", 0
	}
	end := 1
	for end < len(s) && isNameByte(s[end]) {
		end++
	}
	return s[:end], end
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameByte(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

// hasPlaceholder reports whether sql contains a :name placeholder
// outside quoted runs. Used only for the no-args fast path, so the
// error for an unbound parameter still fires.
func hasPlaceholder(sql string) bool {
	var quote byte
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		if quote != 0 {
			if c == '\\' && quote != '`' && i+1 < len(sql) {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case ':':
			if _, width := readName(sql[i+1:]); width > 0 {
				return true
			}
		}
	}
	return false
}
