package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	mymcp "github.com/nowonbun/nowonbun-mariadb-mcp"
	"github.com/nowonbun/nowonbun-mariadb-mcp/internal/apikey"
	"github.com/nowonbun/nowonbun-mariadb-mcp/internal/meta"
)

const defaultConfigPath = ".gomymcp/config.toml"

func runServe() error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configFlag := fs.String("config", "", "Path to configuration file")
	fs.Parse(os.Args[2:])

	// 1. Load config: defaults ← TOML file ← environment.
	serverConfig, err := loadServerConfig(*configFlag)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyEnvOverrides(serverConfig)

	transport := strings.ToLower(os.Getenv("GOMYMCP_TRANSPORT"))
	if transport == "" {
		transport = "stdio"
	}

	// 2. Setup logger. The stdio transport owns stdout for the wire
	// protocol, so logs are forced to stderr there.
	if transport == "stdio" && serverConfig.Logging.Output == "stdout" {
		serverConfig.Logging.Output = "stderr"
	}
	logger := setupLogger(serverConfig.Logging)

	// 3. Create the engine (panics on invalid config).
	myMcp := mymcp.New(serverConfig.Config, logger)
	defer myMcp.Close()

	// 4. Create MCP server with initialize lifecycle logging.
	hooks := &server.Hooks{}
	hooks.AddAfterInitialize(func(ctx context.Context, id any, req *mcp.InitializeRequest, result *mcp.InitializeResult) {
		logger.Info().
			Str("client_name", req.Params.ClientInfo.Name).
			Str("client_version", req.Params.ClientInfo.Version).
			Msg("AI agent connected (MCP initialize)")
	})

	mcpServer := server.NewMCPServer("gomymcp", meta.Version,
		server.WithToolCapabilities(true),
		server.WithHooks(hooks),
	)

	mymcp.RegisterMCPTools(mcpServer, myMcp)

	switch transport {
	case "stdio":
		if serverConfig.Auth.APIKey != "" {
			// Stdio carries no request headers; the gate cannot pass.
			logger.Warn().Msg("auth.api_key is configured but the stdio transport carries no request headers; every tool call will be unauthorized")
		}
		logger.Info().Msg("starting gomymcp server on stdio")
		return server.ServeStdio(mcpServer)
	case "http":
		return serveHTTP(serverConfig, logger, mcpServer)
	default:
		return fmt.Errorf("unknown transport %q (use stdio or http)", transport)
	}
}

func serveHTTP(serverConfig *mymcp.ServerConfig, logger zerolog.Logger, mcpServer *server.MCPServer) error {
	if serverConfig.Server.Port < 1 || serverConfig.Server.Port > 65535 {
		panic("gomymcp: server.port must be between 1 and 65535")
	}
	endpointPath := serverConfig.Server.EndpointPath
	if endpointPath == "" {
		endpointPath = "/mcp"
	}

	addr := fmt.Sprintf("%s:%d", serverConfig.Server.Host, serverConfig.Server.Port)
	mux := http.NewServeMux()

	// Liveness endpoint (process liveness only, never touches the DB).
	if serverConfig.Server.HealthCheckEnabled {
		if serverConfig.Server.HealthCheckPath == "" {
			panic("gomymcp: server.health_check_path must be set when health_check_enabled is true")
		}
		mux.HandleFunc(serverConfig.Server.HealthCheckPath, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
	}

	httpSrv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	streamableServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithEndpointPath(endpointPath),
		server.WithStateLess(serverConfig.Server.Stateless),
		server.WithStreamableHTTPServer(httpSrv),
	)

	// Manually register the MCP handler — Start() does NOT register
	// when a custom *http.Server is provided via WithStreamableHTTPServer.
	// The auth middleware stores each request's headers in the context
	// for the per-tool gate.
	mux.Handle(endpointPath, apikey.Middleware(streamableServer))

	if serverConfig.Server.JSONResponse {
		// tools/call over streamable HTTP already answers plain JSON;
		// the flag is accepted for config compatibility.
		logger.Debug().Msg("server.json_response is advisory for the streamable HTTP transport")
	}

	logger.Info().
		Str("addr", addr).
		Str("endpoint", endpointPath).
		Bool("auth", serverConfig.Auth.APIKey != "").
		Msg("starting gomymcp server")
	return streamableServer.Start(addr)
}

// loadServerConfig resolves the config path (flag, then
// GOMYMCP_CONFIG_PATH, then the default location) and overlays the TOML
// file onto the built-in defaults. A missing file at the default
// location runs on pure defaults; an explicitly named file must exist.
func loadServerConfig(flagPath string) (*mymcp.ServerConfig, error) {
	configPath := flagPath
	explicit := configPath != ""
	if configPath == "" {
		configPath = os.Getenv("GOMYMCP_CONFIG_PATH")
		explicit = configPath != ""
	}
	if configPath == "" {
		configPath = defaultConfigPath
	}

	config := mymcp.DefaultServerConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if explicit {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		return &config, nil
	}
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return &config, nil
}

// applyEnvOverrides applies GOMYMCP_* environment variables over the
// loaded config.
func applyEnvOverrides(config *mymcp.ServerConfig) {
	if v := os.Getenv("GOMYMCP_API_KEY"); v != "" {
		config.Auth.APIKey = v
	}
	if v := os.Getenv("GOMYMCP_API_KEY_HEADER"); v != "" {
		config.Auth.Header = v
	}
	if v := os.Getenv("GOMYMCP_HTTP_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("GOMYMCP_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("GOMYMCP_STATELESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Server.Stateless = b
		}
	}
	if v := os.Getenv("GOMYMCP_JSON_RESPONSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Server.JSONResponse = b
		}
	}
}

func setupLogger(config mymcp.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(config.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	var output io.Writer = os.Stderr
	if config.Output == "stdout" {
		output = os.Stdout
	} else if config.Output != "" && config.Output != "stderr" {
		f, err := os.OpenFile(config.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			output = f
		}
	}

	if config.Format == "console" {
		output = zerolog.ConsoleWriter{Out: output}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
