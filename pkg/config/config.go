package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// ConfigFile is the optional YAML file read from the working directory.
const ConfigFile = "config.yaml"

// Config holds all configuration for semdoc.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (tokens, passwords) must only come from environment variables.
type Config struct {
	Env      string `yaml:"env" env:"SEMDOC_ENV" env-default:"production"`
	LogLevel string `yaml:"log_level" env:"SEMDOC_LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Tabular query service connection
	Service ServiceConfig `yaml:"service"`

	// Data profiling behavior
	Profile ProfileConfig `yaml:"profile"`

	// Document output
	Output OutputConfig `yaml:"output"`

	// Run history database (optional)
	Database DatabaseConfig `yaml:"database"`
}

// ServiceConfig holds the connection to the model's query endpoint.
type ServiceConfig struct {
	// BaseURL is the REST root that hosts the executeQueries endpoint.
	BaseURL string `yaml:"base_url" env:"SEMDOC_BASE_URL" env-default:"https://api.powerbi.com/v1.0/myorg"`

	// AccessToken is the pre-issued bearer token. Token acquisition and
	// refresh happen outside this tool.
	AccessToken string `yaml:"-" env:"SEMDOC_ACCESS_TOKEN"` // Secret - not in YAML

	// Workspace is the workspace (group) GUID. Empty means the token's
	// default workspace.
	Workspace string `yaml:"workspace" env:"SEMDOC_WORKSPACE" env-default:""`

	// Dataset is the semantic model GUID to document.
	Dataset string `yaml:"dataset" env:"SEMDOC_DATASET" env-default:""`

	// TimeoutSeconds bounds each query round-trip.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"SEMDOC_TIMEOUT_SECONDS" env-default:"120"`

	// MaxRetries bounds retry attempts for transient query failures.
	MaxRetries int `yaml:"max_retries" env:"SEMDOC_MAX_RETRIES" env-default:"3"`
}

// ProfileConfig controls how much live data profiling runs on top of the
// structural inference.
type ProfileConfig struct {
	// Mode: "off" (metadata only), "light" (row counts + time anchors),
	// "standard" (light + relationship quality).
	Mode string `yaml:"mode" env:"SEMDOC_PROFILE_MODE" env-default:"light"`

	// Concurrency bounds the number of in-flight profiling queries.
	Concurrency int `yaml:"concurrency" env:"SEMDOC_PROFILE_CONCURRENCY" env-default:"4"`

	// TopK bounds the relationship quality summary.
	TopK int `yaml:"top_k" env:"SEMDOC_PROFILE_TOP_K" env-default:"12"`

	// IncludeEnums samples top values of low-cardinality text columns.
	IncludeEnums bool `yaml:"include_enums" env:"SEMDOC_PROFILE_ENUMS" env-default:"false"`

	// MaxEnumValues bounds each enum sample.
	MaxEnumValues int `yaml:"max_enum_values" env:"SEMDOC_PROFILE_MAX_ENUM_VALUES" env-default:"10"`

	// IncludeExpressions carries measure definition text into the contract.
	IncludeExpressions bool `yaml:"include_expressions" env:"SEMDOC_PROFILE_EXPRESSIONS" env-default:"false"`

	// Thresholds is the relationship severity policy.
	Thresholds models.QualityThresholds `yaml:"thresholds"`
}

// OutputConfig controls document rendering.
type OutputConfig struct {
	// Format: "markdown", "json" or "yaml".
	Format string `yaml:"format" env:"SEMDOC_OUTPUT_FORMAT" env-default:"markdown"`

	// Path is the output file; empty writes to stdout.
	Path string `yaml:"path" env:"SEMDOC_OUTPUT_PATH" env-default:""`
}

// DatabaseConfig holds PostgreSQL configuration for the run history store.
type DatabaseConfig struct {
	Enabled        bool   `yaml:"enabled" env:"SEMDOC_HISTORY_ENABLED" env-default:"false"`
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"semdoc"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"semdoc"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"5"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// ValidProfileModes are the accepted Profile.Mode values.
var ValidProfileModes = []string{"off", "light", "standard"}

// Load reads configuration from config.yaml (when present) with environment
// variable overrides. The version parameter is injected at build time and set
// on the returned Config. Secrets (SEMDOC_ACCESS_TOKEN, PGPASSWORD) must come
// from environment variables (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(ConfigFile); err == nil {
		if err := cleanenv.ReadConfig(ConfigFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate normalizes and checks the configuration. Callers that mutate a
// loaded Config (CLI flag overrides) should call it again before use.
func (c *Config) Validate() error {
	mode := strings.ToLower(strings.TrimSpace(c.Profile.Mode))
	valid := false
	for _, m := range ValidProfileModes {
		if mode == m {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("profile mode %q is not one of %v", c.Profile.Mode, ValidProfileModes)
	}
	c.Profile.Mode = mode

	if c.Profile.Concurrency < 1 {
		return fmt.Errorf("profile concurrency must be >= 1, got %d", c.Profile.Concurrency)
	}
	if c.Profile.TopK < 1 {
		return fmt.Errorf("profile top_k must be >= 1, got %d", c.Profile.TopK)
	}

	format := strings.ToLower(strings.TrimSpace(c.Output.Format))
	switch format {
	case "markdown", "json", "yaml":
		c.Output.Format = format
	default:
		return fmt.Errorf("output format %q is not one of [markdown json yaml]", c.Output.Format)
	}

	t := c.Profile.Thresholds
	if t.CoverageRed > t.CoverageYellow {
		return fmt.Errorf("coverage_red (%.3f) must not exceed coverage_yellow (%.3f)", t.CoverageRed, t.CoverageYellow)
	}
	if t.BlankYellow > t.BlankRed {
		return fmt.Errorf("blank_yellow (%.3f) must not exceed blank_red (%.3f)", t.BlankYellow, t.BlankRed)
	}

	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
