// Package configure is the interactive TOML configuration wizard.
package configure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/term"

	mymcp "github.com/nowonbun/nowonbun-mariadb-mcp"
)

const fileHeader = `# gomymcp configuration
# Generated by 'gomymcp configure'. Permissions default to a read-only
# posture; enable write categories deliberately.

`

// Run runs the interactive configuration wizard: reads the existing
// config (if any), prompts for each field, and writes the updated TOML
// to configPath.
func Run(configPath string) error {
	return run(configPath, os.Stdin, os.Stderr)
}

func run(configPath string, input io.Reader, output io.Writer) error {
	scanner := bufio.NewScanner(input)
	cfg, isNew := loadExisting(configPath)

	p := &prompter{
		scanner: scanner,
		input:   input,
		output:  output,
		isNew:   isNew,
	}

	fmt.Fprintf(output, "gomymcp configuration wizard\n")
	fmt.Fprintf(output, "Config file: %s\n\n", configPath)

	// MySQL
	fmt.Fprintf(output, "=== MySQL ===\n")
	cfg.Mysql.Host = p.promptString("mysql.host", cfg.Mysql.Host)
	cfg.Mysql.Port = p.promptPort("mysql.port", cfg.Mysql.Port)
	cfg.Mysql.User = p.promptString("mysql.user", cfg.Mysql.User)
	cfg.Mysql.Password = p.promptSecret("mysql.password", cfg.Mysql.Password)
	cfg.Mysql.Database = p.promptStringWithHint("mysql.database", cfg.Mysql.Database, "required")
	cfg.Mysql.ConnectTimeout = p.promptPositiveInt("mysql.connect_timeout", cfg.Mysql.ConnectTimeout, "seconds, must be > 0")

	// Permissions
	fmt.Fprintf(output, "\n=== Permissions ===\n")
	cfg.Permissions.Select = p.promptBool("permissions.select", cfg.Permissions.Select)
	cfg.Permissions.Insert = p.promptBool("permissions.insert", cfg.Permissions.Insert)
	cfg.Permissions.Update = p.promptBool("permissions.update", cfg.Permissions.Update)
	cfg.Permissions.Delete = p.promptBool("permissions.delete", cfg.Permissions.Delete)
	cfg.Permissions.DDL = p.promptBool("permissions.ddl", cfg.Permissions.DDL)
	cfg.Permissions.MaxRows = p.promptNonNegativeInt("permissions.max_rows", cfg.Permissions.MaxRows, "0 = unlimited")

	// Auth
	fmt.Fprintf(output, "\n=== Auth (HTTP transport only) ===\n")
	cfg.Auth.APIKey = p.promptSecret("auth.api_key (empty disables auth)", cfg.Auth.APIKey)
	cfg.Auth.Header = p.promptString("auth.header", cfg.Auth.Header)
	cfg.Auth.AllowBearer = p.promptBool("auth.allow_bearer", cfg.Auth.AllowBearer)

	// Server
	fmt.Fprintf(output, "\n=== Server (HTTP transport only) ===\n")
	cfg.Server.Host = p.promptString("server.host", cfg.Server.Host)
	cfg.Server.Port = p.promptPort("server.port", cfg.Server.Port)
	cfg.Server.EndpointPath = p.promptStringWithHint("server.endpoint_path", cfg.Server.EndpointPath, "e.g. /mcp")
	cfg.Server.Stateless = p.promptBool("server.stateless", cfg.Server.Stateless)
	cfg.Server.JSONResponse = p.promptBool("server.json_response", cfg.Server.JSONResponse)
	cfg.Server.HealthCheckEnabled = p.promptBool("server.health_check_enabled", cfg.Server.HealthCheckEnabled)
	cfg.Server.HealthCheckPath = p.promptStringWithHint("server.health_check_path", cfg.Server.HealthCheckPath, "e.g. /health, required when health_check_enabled is true")

	// Logging
	fmt.Fprintf(output, "\n=== Logging ===\n")
	cfg.Logging.Level = p.promptEnum("logging.level", cfg.Logging.Level, logLevels)
	cfg.Logging.Format = p.promptEnum("logging.format", cfg.Logging.Format, logFormats)
	cfg.Logging.Output = p.promptStringWithHint("logging.output", cfg.Logging.Output, "stderr, stdout, or file path")

	// Array fields
	fmt.Fprintf(output, "\n=== Sanitization Rules ===\n")
	cfg.Sanitization = p.promptSanitizationRules(cfg.Sanitization)

	fmt.Fprintf(output, "\n=== Error Prompts ===\n")
	cfg.ErrorPrompts = p.promptErrorPrompts(cfg.ErrorPrompts)

	if err := writeConfig(configPath, cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(output, "\nConfiguration saved to %s\n", configPath)
	return nil
}

// loadExisting reads the config at configPath over the built-in
// defaults. A missing or unparseable file starts a fresh config.
func loadExisting(configPath string) (*mymcp.ServerConfig, bool) {
	cfg := mymcp.DefaultServerConfig()
	data, err := os.ReadFile(configPath)
	if err != nil {
		return &cfg, true
	}
	// Ignore unmarshal errors — start with whatever was parseable.
	_ = toml.Unmarshal(data, &cfg)
	return &cfg, false
}

var (
	logLevels  = []string{"trace", "debug", "info", "warn", "error"}
	logFormats = []string{"json", "console"}
)

func writeConfig(configPath string, cfg *mymcp.ServerConfig) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append([]byte(fileHeader), data...)

	// The file carries database credentials and the API key.
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", configPath, err)
	}

	return nil
}

// prompter handles reading user input and displaying prompts.
type prompter struct {
	scanner *bufio.Scanner
	input   io.Reader
	output  io.Writer
	isNew   bool
}

func (p *prompter) readLine() string {
	if p.scanner.Scan() {
		return strings.TrimSpace(p.scanner.Text())
	}
	return ""
}

func (p *prompter) valueLabel() string {
	if p.isNew {
		return "default"
	}
	return "current"
}

func (p *prompter) promptString(field string, current string) string {
	fmt.Fprintf(p.output, "%s (%s: %q): ", field, p.valueLabel(), current)
	input := p.readLine()
	if input == "" {
		return current
	}
	return input
}

func (p *prompter) promptStringWithHint(field string, current string, hint string) string {
	fmt.Fprintf(p.output, "%s [%s] (%s: %q): ", field, hint, p.valueLabel(), current)
	input := p.readLine()
	if input == "" {
		return current
	}
	return input
}

// promptSecret never echoes the current value, only whether one is
// set. On a terminal the input itself is read without echo.
func (p *prompter) promptSecret(field string, current string) string {
	state := "not set"
	if current != "" {
		state = "set, press enter to keep"
	}
	fmt.Fprintf(p.output, "%s (%s): ", field, state)

	if f, ok := p.input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.output)
		if err != nil || len(secret) == 0 {
			return current
		}
		return string(secret)
	}

	input := p.readLine()
	if input == "" {
		return current
	}
	return input
}

func (p *prompter) promptPort(field string, current int) int {
	for {
		fmt.Fprintf(p.output, "%s [1-65535] (%s: %d): ", field, p.valueLabel(), current)
		input := p.readLine()
		if input == "" {
			return current
		}
		val, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(p.output, "  Invalid integer %q, try again.\n", input)
			continue
		}
		if val < 1 || val > 65535 {
			fmt.Fprintf(p.output, "  Port must be between 1 and 65535, try again.\n")
			continue
		}
		return val
	}
}

func (p *prompter) promptPositiveInt(field string, current int, hint string) int {
	for {
		fmt.Fprintf(p.output, "%s [%s] (%s: %d): ", field, hint, p.valueLabel(), current)
		input := p.readLine()
		if input == "" {
			return current
		}
		val, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(p.output, "  Invalid integer %q, try again.\n", input)
			continue
		}
		if val <= 0 {
			fmt.Fprintf(p.output, "  Value must be > 0, try again.\n")
			continue
		}
		return val
	}
}

func (p *prompter) promptNonNegativeInt(field string, current int, hint string) int {
	for {
		fmt.Fprintf(p.output, "%s [%s] (%s: %d): ", field, hint, p.valueLabel(), current)
		input := p.readLine()
		if input == "" {
			return current
		}
		val, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(p.output, "  Invalid integer %q, try again.\n", input)
			continue
		}
		if val < 0 {
			fmt.Fprintf(p.output, "  Value must be >= 0, try again.\n")
			continue
		}
		return val
	}
}

func (p *prompter) promptBool(field string, current bool) bool {
	for {
		fmt.Fprintf(p.output, "%s (%s: %v): ", field, p.valueLabel(), current)
		input := p.readLine()
		if input == "" {
			return current
		}
		switch strings.ToLower(input) {
		case "true", "t", "yes", "y", "1":
			return true
		case "false", "f", "no", "n", "0":
			return false
		default:
			fmt.Fprintf(p.output, "  Invalid value %q, use true/false/yes/no, try again.\n", input)
		}
	}
}

func (p *prompter) promptEnum(field string, current string, allowed []string) string {
	for {
		fmt.Fprintf(p.output, "%s (%s: %q, options: %s): ", field, p.valueLabel(), current, strings.Join(allowed, ", "))
		input := p.readLine()
		if input == "" {
			return current
		}
		for _, v := range allowed {
			if input == v {
				return input
			}
		}
		fmt.Fprintf(p.output, "  Invalid value %q, must be one of: %s\n", input, strings.Join(allowed, ", "))
	}
}

// Array field editors

func (p *prompter) promptSanitizationRules(current []mymcp.SanitizationRule) []mymcp.SanitizationRule {
	rules := current
	for {
		if len(rules) == 0 {
			fmt.Fprintf(p.output, "  (no entries)\n")
		}
		for i, r := range rules {
			fmt.Fprintf(p.output, "  [%d] pattern=%q replacement=%q\n", i, r.Pattern, r.Replacement)
		}
		fmt.Fprintf(p.output, "[a]dd, [r]emove, [c]ontinue? ")
		switch strings.ToLower(p.readLine()) {
		case "a":
			rules = append(rules, mymcp.SanitizationRule{
				Pattern:     p.promptNewRegexField("pattern"),
				Replacement: p.promptNewField("replacement"),
			})
		case "r":
			rules = removeByIndex(p, "sanitization rule", rules)
		case "c", "":
			return rules
		default:
			fmt.Fprintf(p.output, "  Unknown choice, try again.\n")
		}
	}
}

func (p *prompter) promptErrorPrompts(current []mymcp.ErrorPromptRule) []mymcp.ErrorPromptRule {
	rules := current
	for {
		if len(rules) == 0 {
			fmt.Fprintf(p.output, "  (no entries)\n")
		}
		for i, r := range rules {
			fmt.Fprintf(p.output, "  [%d] pattern=%q prompt=%q\n", i, r.Pattern, r.Prompt)
		}
		fmt.Fprintf(p.output, "[a]dd, [r]emove, [c]ontinue? ")
		switch strings.ToLower(p.readLine()) {
		case "a":
			rules = append(rules, mymcp.ErrorPromptRule{
				Pattern: p.promptNewRegexField("pattern"),
				Prompt:  p.promptNewField("prompt"),
			})
		case "r":
			rules = removeByIndex(p, "error prompt", rules)
		case "c", "":
			return rules
		default:
			fmt.Fprintf(p.output, "  Unknown choice, try again.\n")
		}
	}
}

func (p *prompter) promptNewField(name string) string {
	fmt.Fprintf(p.output, "  %s: ", name)
	return p.readLine()
}

func (p *prompter) promptNewRegexField(name string) string {
	for {
		fmt.Fprintf(p.output, "  %s (regex): ", name)
		input := p.readLine()
		if input == "" {
			return ""
		}
		if _, err := regexp.Compile(input); err != nil {
			fmt.Fprintf(p.output, "  Invalid regex %q: %v, try again.\n", input, err)
			continue
		}
		return input
	}
}

// removeByIndex is a generic helper for removing an element by index from a slice.
func removeByIndex[T any](p *prompter, label string, items []T) []T {
	if len(items) == 0 {
		fmt.Fprintf(p.output, "  No %s entries to remove.\n", label)
		return items
	}
	fmt.Fprintf(p.output, "  Index to remove: ")
	input := p.readLine()
	idx, err := strconv.Atoi(input)
	if err != nil || idx < 0 || idx >= len(items) {
		fmt.Fprintf(p.output, "  Invalid index.\n")
		return items
	}
	return append(items[:idx], items[idx+1:]...)
}
