// Package errprompt appends configured guidance to driver error messages.
package errprompt

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule maps an error message pattern to a guidance message for the
// calling agent.
type Rule struct {
	Pattern string
	Message string
}

type compiledRule struct {
	pattern *regexp.Regexp
	message string
}

// Matcher checks driver error messages against patterns and returns
// guidance prompts. MySQL error texts like "Access denied for user" or
// "Unknown column" are typical targets.
type Matcher struct {
	rules []compiledRule
}

// NewMatcher compiles the rules. Returns an error on an invalid regex
// pattern.
func NewMatcher(rules []Rule) (*Matcher, error) {
	compiled := make([]compiledRule, len(rules))
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("errprompt: invalid regex pattern %q: %v", r.Pattern, err)
		}
		compiled[i] = compiledRule{pattern: re, message: r.Message}
	}
	return &Matcher{rules: compiled}, nil
}

// Match checks errMsg against all rules, top to bottom, and returns
// the matching messages joined with newlines. Empty string on no match.
func (m *Matcher) Match(errMsg string) string {
	var matches []string
	for _, rule := range m.rules {
		if rule.pattern.MatchString(errMsg) {
			matches = append(matches, rule.message)
		}
	}
	return strings.Join(matches, "\n")
}

// MatchedPatterns returns the regex patterns that matched errMsg, for
// logging. Nil on no match.
func (m *Matcher) MatchedPatterns(errMsg string) []string {
	var patterns []string
	for _, rule := range m.rules {
		if rule.pattern.MatchString(errMsg) {
			patterns = append(patterns, rule.pattern.String())
		}
	}
	return patterns
}
