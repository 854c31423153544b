// Package sanitize applies regex-based redaction to result row values.
package sanitize

import (
	"fmt"
	"regexp"
)

// Rule is a single redaction rule. Replacement may use ${n} group
// references.
type Rule struct {
	Pattern     string
	Replacement string
}

type compiledRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Sanitizer rewrites string values in result rows through its rules,
// in order. Rows fetched from MySQL are flat column-to-scalar maps, so
// only top-level string values are touched; numbers, booleans, times,
// and NULLs pass through unchanged.
type Sanitizer struct {
	rules []compiledRule
}

// New compiles the rules. Returns an error on an invalid regex pattern.
func New(rules []Rule) (*Sanitizer, error) {
	compiled := make([]compiledRule, len(rules))
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("sanitize: invalid regex pattern %q: %v", r.Pattern, err)
		}
		compiled[i] = compiledRule{pattern: re, replacement: r.Replacement}
	}
	return &Sanitizer{rules: compiled}, nil
}

// HasRules returns true if the sanitizer has any rules configured.
func (s *Sanitizer) HasRules() bool {
	return len(s.rules) > 0
}

// Apply rewrites string values in rows in place and returns rows.
// With no rules configured it is a no-op.
func (s *Sanitizer) Apply(rows []map[string]interface{}) []map[string]interface{} {
	if len(s.rules) == 0 {
		return rows
	}
	for _, row := range rows {
		for k, v := range row {
			if str, ok := v.(string); ok {
				row[k] = s.apply(str)
			}
		}
	}
	return rows
}

func (s *Sanitizer) apply(value string) string {
	for _, rule := range s.rules {
		value = rule.pattern.ReplaceAllString(value, rule.replacement)
	}
	return value
}
