package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/snapguard/schema"
)

// Default values for configuration.
const (
	DefaultWorkers   = 1
	MaxWorkers       = 256
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// SelfPluginGroupID and SelfPluginArtifactID identify snapguard's own build plugin.
const (
	SelfPluginGroupID    = "io.github.huangsam"
	SelfPluginArtifactID = "snapguard-maven-plugin"
)

// validLogLevels lists the accepted log levels.
var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// validLogFormats lists the accepted log formats.
var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a check.
// This struct is the "final, validated" config.
type Config struct {
	ReactorPath   string
	ReactorFormat schema.ReactorFormat

	SelfPlugin      string
	IntegrationTest bool

	Workers    int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	LogLevel  string
	LogFormat string

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	ReactorPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Workers          int    `mapstructure:"workers"`
	Width            int    `mapstructure:"width"`
	LogLevel         string `mapstructure:"log-level"`
	LogFormat        string `mapstructure:"log-format"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Emoji            string `mapstructure:"emoji"`
	Color            string `mapstructure:"color"`

	// --- Fields from checkCmd.Flags() ---
	ReactorFormat   string `mapstructure:"reactor-format"`
	SelfPlugin      string `mapstructure:"self-plugin"`
	IntegrationTest bool   `mapstructure:"integration-test"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Params returns the settings recorded alongside a check run.
func (c *Config) Params() map[string]any {
	return map[string]any{
		"reactor_path":     c.ReactorPath,
		"reactor_format":   string(c.ReactorFormat),
		"self_plugin":      c.SelfPlugin,
		"integration_test": c.IntegrationTest,
		"workers":          c.Workers,
	}
}

// DefaultSelfPlugin returns the identity of snapguard's own plugin at the given version.
func DefaultSelfPlugin(version string) string {
	return schema.Coordinates{
		GroupID:    SelfPluginGroupID,
		ArtifactID: SelfPluginArtifactID,
		Version:    version,
	}.String()
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processCheckInputs(cfg, input); err != nil {
		return err
	}
	if err := resolveReactorPath(cfg, input); err != nil {
		return err
	}
	return nil
}

// RevalidateCheck validates check settings changed after ProcessAndValidate,
// such as per-request overrides from the MCP server.
func RevalidateCheck(cfg *Config) error {
	input := &ConfigRawInput{
		ReactorPathStr:  cfg.ReactorPath,
		ReactorFormat:   string(cfg.ReactorFormat),
		SelfPlugin:      cfg.SelfPlugin,
		IntegrationTest: cfg.IntegrationTest,
	}
	if cfg.Workers <= 0 || cfg.Workers > MaxWorkers {
		return fmt.Errorf("workers must be greater than 0 and cannot exceed %d (received %d)", MaxWorkers, cfg.Workers)
	}
	if err := processCheckInputs(cfg, input); err != nil {
		return err
	}
	return resolveReactorPath(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseHistoryBackend turns the raw backend string into a backend.
// An empty string disables history tracking.
func ParseHistoryBackend(raw string) (schema.DatabaseBackend, error) {
	if strings.TrimSpace(raw) == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", raw)
	}
	return backend, nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 || input.Workers > MaxWorkers {
		return fmt.Errorf("workers must be greater than 0 and cannot exceed %d (received %d)", MaxWorkers, input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	// --- 3. Logging Validation ---
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if _, ok := validLogLevels[cfg.LogLevel]; !ok {
		return fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", input.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(input.LogFormat))
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if _, ok := validLogFormats[cfg.LogFormat]; !ok {
		return fmt.Errorf("invalid log format '%s'. must be console, json", input.LogFormat)
	}

	// --- 4. Backend Validation ---
	backend, err := ParseHistoryBackend(input.HistoryBackend)
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	return nil
}

// processCheckInputs handles the reactor format and the self exemption settings.
func processCheckInputs(cfg *Config, input *ConfigRawInput) error {
	format := strings.ToLower(strings.TrimSpace(input.ReactorFormat))
	if format == "" {
		format = string(schema.AutoFormat)
	}
	cfg.ReactorFormat = schema.ReactorFormat(format)
	if _, ok := schema.ValidReactorFormats[cfg.ReactorFormat]; !ok {
		return fmt.Errorf("invalid reactor format '%s'. must be auto, pom, yaml, json", input.ReactorFormat)
	}

	cfg.IntegrationTest = input.IntegrationTest
	cfg.SelfPlugin = strings.TrimSpace(input.SelfPlugin)
	if cfg.IntegrationTest && cfg.SelfPlugin == "" {
		return fmt.Errorf("--self-plugin cannot be empty when --integration-test is enabled")
	}
	if cfg.SelfPlugin != "" && strings.Count(cfg.SelfPlugin, ":") != 2 {
		return fmt.Errorf("invalid self plugin '%s'. expected groupId:artifactId:version", cfg.SelfPlugin)
	}
	return nil
}

// resolveReactorPath resolves the reactor location to an absolute, existing path.
func resolveReactorPath(cfg *Config, input *ConfigRawInput) error {
	searchPath := input.ReactorPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absPath = filepath.Clean(absPath)

	if _, err := os.Stat(absPath); err != nil {
		return fmt.Errorf("reactor path %q is not accessible: %w", searchPath, err)
	}
	cfg.ReactorPath = absPath
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
