package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	mymcp "github.com/nowonbun/nowonbun-mariadb-mcp"
	"github.com/nowonbun/nowonbun-mariadb-mcp/internal/meta"
)

func runDoctor() error {
	fs := flag.NewFlagSet("doctor", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
	fs.Parse(os.Args[2:])

	useColor := isTTY(os.Stderr.Fd())
	return doctor(os.Stderr, useColor, *configPath)
}

// doctor statically validates the config file and prints agent
// connection snippets. It never dials the database.
func doctor(w io.Writer, useColor bool, configPath string) error {
	printBanner(w, useColor)
	fmt.Fprintf(w, "gomymcp %s\n\n", meta.Version)

	config, ok := doctorValidateConfig(w, useColor, configPath)
	if !ok {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Fix the issues above and run 'gomymcp doctor' again.")
		return nil
	}

	fmt.Fprintln(w)
	printPostureSummary(w, useColor, config)
	fmt.Fprintln(w)
	printAgentSnippets(w, useColor, config)
	return nil
}

// doctorValidateConfig loads and validates the config file, printing check results.
// Returns the parsed config and true if all checks passed.
func doctorValidateConfig(w io.Writer, useColor bool, configPath string) (*mymcp.ServerConfig, bool) {
	allPassed := true

	// Check 1: Config file exists and is valid TOML
	data, err := os.ReadFile(configPath)
	if err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Config file readable (%s)", configPath))
		allPassed = false
		return nil, allPassed
	}
	printCheck(w, useColor, true, fmt.Sprintf("Config file readable (%s)", configPath))

	config := mymcp.DefaultServerConfig()
	if err := toml.Unmarshal(data, &config); err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Config file is valid TOML: %v", err))
		allPassed = false
		return nil, allPassed
	}
	printCheck(w, useColor, true, "Config file is valid TOML")

	// Check 2: mysql.database is set
	if config.Mysql.Database == "" {
		printCheck(w, useColor, false, "mysql.database is set")
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("mysql.database is set (%s)", config.Mysql.Database))
	}

	// Check 3: ports in range
	if config.Mysql.Port < 1 || config.Mysql.Port > 65535 {
		printCheck(w, useColor, false, fmt.Sprintf("mysql.port is valid (%d)", config.Mysql.Port))
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("mysql.port is valid (%d)", config.Mysql.Port))
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		printCheck(w, useColor, false, fmt.Sprintf("server.port is valid (%d)", config.Server.Port))
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("server.port is valid (%d)", config.Server.Port))
	}

	// Check 4: max_rows is not negative
	if config.Permissions.MaxRows < 0 {
		printCheck(w, useColor, false, fmt.Sprintf("permissions.max_rows is >= 0 (%d)", config.Permissions.MaxRows))
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("permissions.max_rows is >= 0 (%d)", config.Permissions.MaxRows))
	}

	// Check 5: Health check path set when enabled
	if config.Server.HealthCheckEnabled {
		if config.Server.HealthCheckPath == "" {
			printCheck(w, useColor, false, "server.health_check_path is set (required when health_check_enabled)")
			allPassed = false
		} else {
			printCheck(w, useColor, true, fmt.Sprintf("server.health_check_path is set (%s)", config.Server.HealthCheckPath))
		}
	}

	// Check 6: Auth header set when a key is configured
	if config.Auth.APIKey != "" && config.Auth.Header == "" && !config.Auth.AllowBearer {
		printCheck(w, useColor, false, "auth.header or auth.allow_bearer must be set when auth.api_key is configured")
		allPassed = false
	}

	// Check 7: Regex patterns compile
	regexOK := true

	for i, rule := range config.ErrorPrompts {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			printCheck(w, useColor, false, fmt.Sprintf("error_prompts[%d] regex compiles: %v", i, err))
			regexOK = false
			allPassed = false
		}
	}

	for i, rule := range config.Sanitization {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			printCheck(w, useColor, false, fmt.Sprintf("sanitization[%d] regex compiles: %v", i, err))
			regexOK = false
			allPassed = false
		}
	}

	if regexOK {
		printCheck(w, useColor, true, "All regex patterns compile")
	}

	return &config, allPassed
}

// printPostureSummary prints the effective permission and auth posture.
func printPostureSummary(w io.Writer, useColor bool, config *mymcp.ServerConfig) {
	heading(w, useColor, "Posture")
	fmt.Fprintln(w)

	var enabled []string
	for _, p := range []struct {
		name string
		on   bool
	}{
		{"select", config.Permissions.Select},
		{"insert", config.Permissions.Insert},
		{"update", config.Permissions.Update},
		{"delete", config.Permissions.Delete},
		{"ddl", config.Permissions.DDL},
	} {
		if p.on {
			enabled = append(enabled, p.name)
		}
	}

	switch {
	case len(enabled) == 0:
		fmt.Fprintln(w, "  Permissions: nothing enabled — every statement will be denied")
	case len(enabled) == 1 && enabled[0] == "select":
		fmt.Fprintln(w, "  Permissions: read-only (select)")
	default:
		fmt.Fprintf(w, "  Permissions: %s\n", strings.Join(enabled, ", "))
	}

	if config.Permissions.MaxRows == 0 {
		fmt.Fprintln(w, "  Result cap: unlimited")
	} else {
		fmt.Fprintf(w, "  Result cap: %d rows\n", config.Permissions.MaxRows)
	}

	if config.Auth.APIKey == "" {
		fmt.Fprintln(w, "  Auth: disabled (no api_key configured)")
	} else {
		fmt.Fprintf(w, "  Auth: API key via %q header", config.Auth.Header)
		if config.Auth.AllowBearer {
			fmt.Fprint(w, " or Authorization: Bearer")
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  Note: auth applies to the HTTP transport only; stdio calls fail when a key is set")
	}
}

// printCheck prints a colored ✓ or ✗ check line.
func printCheck(w io.Writer, useColor bool, pass bool, msg string) {
	if pass {
		if useColor {
			fmt.Fprintf(w, "  \033[32m✓\033[0m %s\n", msg)
		} else {
			fmt.Fprintf(w, "  ✓ %s\n", msg)
		}
	} else {
		if useColor {
			fmt.Fprintf(w, "  \033[31m✗\033[0m %s\n", msg)
		} else {
			fmt.Fprintf(w, "  ✗ %s\n", msg)
		}
	}
}

func heading(w io.Writer, useColor bool, title string) {
	if useColor {
		fmt.Fprintf(w, "\033[1;36m%s\033[0m\n", title)
	} else {
		fmt.Fprintln(w, title)
	}
}

// printAgentSnippets prints MCP connection config snippets for various AI agents.
func printAgentSnippets(w io.Writer, useColor bool, config *mymcp.ServerConfig) {
	endpointPath := config.Server.EndpointPath
	if endpointPath == "" {
		endpointPath = "/mcp"
	}
	url := fmt.Sprintf("http://%s:%d%s", config.Server.Host, config.Server.Port, endpointPath)

	subheading := func(title string) {
		if useColor {
			fmt.Fprintf(w, "  \033[1m%s\033[0m\n", title)
		} else {
			fmt.Fprintf(w, "  %s\n", title)
		}
	}

	heading(w, useColor, "Agent Connection Snippets")
	fmt.Fprintln(w)

	// Claude Code
	subheading("Claude Code")
	fmt.Fprintf(w, "  Run this command to add the server:\n\n")
	fmt.Fprintf(w, "    claude mcp add --transport http mysql %s\n\n", url)
	fmt.Fprintf(w, "  Or add to .mcp.json (project scope):\n\n")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "mysql": {
        "type": "http",
        "url": "%s"
      }
    }
  }
`, url)
	fmt.Fprintln(w)

	// Copilot CLI
	subheading("Copilot CLI (~/.copilot/mcp-config.json)")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "mysql": {
        "type": "http",
        "url": "%s"
      }
    }
  }
`, url)
	fmt.Fprintln(w)

	// Gemini CLI
	subheading("Gemini CLI (~/.gemini/settings.json)")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "mysql": {
        "httpUrl": "%s"
      }
    }
  }
`, url)
	fmt.Fprintln(w)

	// Cursor
	subheading("Cursor (.cursor/mcp.json)")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "mysql": {
        "url": "%s"
      }
    }
  }
`, url)
	fmt.Fprintln(w)

	// Stdio
	subheading("Stdio (no HTTP server)")
	fmt.Fprintf(w, "  Point the agent directly at the binary:\n\n")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "mysql": {
        "command": "gomymcp",
        "args": ["serve"]
      }
    }
  }
`)
}
