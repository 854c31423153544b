package mymcp

// Config is the policy snapshot used by library mode via New().
// It is read once at startup and never mutated afterwards.
type Config struct {
	Mysql        MysqlConfig        `toml:"mysql" json:"mysql"`
	Permissions  PermissionsConfig  `toml:"permissions" json:"permissions"`
	Auth         AuthConfig         `toml:"auth" json:"auth"`
	Sanitization []SanitizationRule `toml:"sanitization" json:"sanitization"`
	ErrorPrompts []ErrorPromptRule  `toml:"error_prompts" json:"error_prompts"`
}

// ServerConfig embeds Config and adds server-only fields for CLI mode.
type ServerConfig struct {
	Config
	Server  ServerSettings `toml:"server" json:"server"`
	Logging LoggingConfig  `toml:"logging" json:"logging"`
}

// MysqlConfig holds the MySQL/MariaDB connection descriptor.
type MysqlConfig struct {
	Host           string `toml:"host" json:"host"`
	Port           int    `toml:"port" json:"port"`
	User           string `toml:"user" json:"user"`
	Password       string `toml:"password" json:"password"`
	Database       string `toml:"database" json:"database"`
	ConnectTimeout int    `toml:"connect_timeout" json:"connect_timeout"` // seconds
}

// PermissionsConfig is the per-category permission matrix plus the
// result cap. MaxRows caps rows returned for read statements, enforced
// in memory after fetch; 0 means unlimited.
type PermissionsConfig struct {
	Select  bool `toml:"select" json:"select"`
	Insert  bool `toml:"insert" json:"insert"`
	Update  bool `toml:"update" json:"update"`
	Delete  bool `toml:"delete" json:"delete"`
	DDL     bool `toml:"ddl" json:"ddl"`
	MaxRows int  `toml:"max_rows" json:"max_rows"`
}

// AuthConfig is the optional shared-secret gate for HTTP deployments.
// An empty APIKey disables the gate entirely. The stdio transport has
// no per-call request headers, so a configured key there makes every
// call unauthorized rather than silently bypassing the gate.
type AuthConfig struct {
	APIKey      string `toml:"api_key" json:"api_key"`
	Header      string `toml:"header" json:"header"`
	AllowBearer bool   `toml:"allow_bearer" json:"allow_bearer"`
}

// ServerSettings holds HTTP transport settings for CLI mode.
type ServerSettings struct {
	Host               string `toml:"host" json:"host"`
	Port               int    `toml:"port" json:"port"`
	EndpointPath       string `toml:"endpoint_path" json:"endpoint_path"`
	Stateless          bool   `toml:"stateless" json:"stateless"`
	JSONResponse       bool   `toml:"json_response" json:"json_response"`
	HealthCheckEnabled bool   `toml:"health_check_enabled" json:"health_check_enabled"`
	HealthCheckPath    string `toml:"health_check_path" json:"health_check_path"`
}

// LoggingConfig holds logging settings for CLI mode.
type LoggingConfig struct {
	Level  string `toml:"level" json:"level"`   // trace, debug, info, warn, error
	Format string `toml:"format" json:"format"` // json, console
	Output string `toml:"output" json:"output"` // stderr, stdout, or file path
}

// ErrorPromptRule maps a driver error message pattern to a guidance
// message appended to the error before it reaches the caller.
type ErrorPromptRule struct {
	Pattern string `toml:"pattern" json:"pattern"`
	Prompt  string `toml:"prompt" json:"prompt"`
}

// SanitizationRule defines a regex replacement applied to string values
// in returned rows.
type SanitizationRule struct {
	Pattern     string `toml:"pattern" json:"pattern"`
	Replacement string `toml:"replacement" json:"replacement"`
}

// DefaultServerConfig returns the built-in defaults: a read-only
// permission posture (select only, max_rows 1000), local MySQL
// connection parameters, and stdio-friendly logging. A TOML config
// file and GOMYMCP_* environment variables overlay these.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Config: Config{
			Mysql: MysqlConfig{
				Host:           "127.0.0.1",
				Port:           3306,
				User:           "root",
				ConnectTimeout: 5,
			},
			Permissions: PermissionsConfig{
				Select:  true,
				MaxRows: 1000,
			},
			Auth: AuthConfig{
				Header:      "X-API-Key",
				AllowBearer: true,
			},
		},
		Server: ServerSettings{
			Host:            "127.0.0.1",
			Port:            3307,
			EndpointPath:    "/mcp",
			HealthCheckPath: "/health",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}
