// Package config assembles the tool's configuration from an optional YAML
// file and environment variables, in that precedence order (env wins). The
// result is an explicit struct constructed once at startup and passed into
// constructors; nothing reads the environment after Load returns.
package config

import (
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/schemadump/schemadump/internal/errs"
	"github.com/schemadump/schemadump/internal/filestore"
)

// Source selects which backend issues the introspection call.
const (
	SourceREST     = "rest"     // PostgREST RPC endpoint (url + service key)
	SourcePostgres = "postgres" // direct connection (url is a DSN)
)

// Environment variable names. Environment values override the YAML file.
const (
	EnvURL        = "SCHEMADUMP_URL"
	EnvServiceKey = "SCHEMADUMP_SERVICE_KEY"
	EnvSource     = "SCHEMADUMP_SOURCE"
	EnvOutputDir  = "SCHEMADUMP_OUTPUT_DIR"
	EnvRPCFunc    = "SCHEMADUMP_RPC_FUNCTION"
	EnvLogLevel   = "SCHEMADUMP_LOG_LEVEL"
	EnvLogFormat  = "SCHEMADUMP_LOG_FORMAT"
)

// Fetch holds the retry budget for the introspection call.
type Fetch struct {
	// MaxAttempts is the total attempt budget, including the first call.
	MaxAttempts int `yaml:"max_attempts"`

	// BackoffSeconds is the delay before the first retry, in seconds; each
	// further retry doubles it.
	BackoffSeconds int `yaml:"backoff_seconds"`
}

// BackoffBase returns the first retry delay as a duration.
func (f Fetch) BackoffBase() time.Duration {
	return time.Duration(f.BackoffSeconds) * time.Second
}

// Log holds logger settings.
type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// Config is the full runtime configuration.
type Config struct {
	// Source is the fetch backend: SourceREST or SourcePostgres.
	Source string `yaml:"source"`

	// URL is the database endpoint: the PostgREST base URL for the rest
	// source, or a postgres:// DSN for the postgres source.
	URL string `yaml:"url"`

	// ServiceKey is the privileged access credential used by the rest
	// source. The postgres source carries credentials in the DSN.
	ServiceKey string `yaml:"service_key"`

	// RPCFunction is the server-side introspection procedure name.
	RPCFunction string `yaml:"rpc_function"`

	// OutputDir is where artifacts are written. Single-table mode writes
	// into a per-table subdirectory beneath it.
	OutputDir string `yaml:"output_dir"`

	// DebugDump enables the best-effort raw payload copy next to the
	// artifacts.
	DebugDump bool `yaml:"debug_dump"`

	Fetch Fetch `yaml:"fetch"`
	Log   Log   `yaml:"log"`

	// Publish, when set, uploads artifacts to object storage after the
	// local write succeeds.
	Publish *filestore.Config `yaml:"publish"`
}

// Default returns the built-in settings layer.
func Default() *Config {
	return &Config{
		Source:      SourceREST,
		RPCFunction: "get_schema_info",
		OutputDir:   "schema-docs",
		DebugDump:   true,
		Fetch: Fetch{
			MaxAttempts:    3,
			BackoffSeconds: 1,
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (may
// be empty for none), then environment overrides. Validation is the
// caller's call — run it before any network activity.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindConfig, "read config file "+path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errs.Wrap(errs.ErrKindConfig, "parse config file "+path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setIfPresent(EnvURL, &c.URL)
	setIfPresent(EnvServiceKey, &c.ServiceKey)
	setIfPresent(EnvSource, &c.Source)
	setIfPresent(EnvOutputDir, &c.OutputDir)
	setIfPresent(EnvRPCFunc, &c.RPCFunction)
	setIfPresent(EnvLogLevel, &c.Log.Level)
	setIfPresent(EnvLogFormat, &c.Log.Format)
}

func setIfPresent(env string, dst *string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// Validate fails fast on missing endpoint or credential. It runs before
// any network activity; a failure aborts the process.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errs.New(errs.ErrKindConfig, "database endpoint URL is required (set "+EnvURL+")")
	}
	switch c.Source {
	case SourceREST:
		if c.ServiceKey == "" {
			return errs.New(errs.ErrKindConfig, "service key is required (set "+EnvServiceKey+")")
		}
	case SourcePostgres:
		// credentials travel in the DSN
	default:
		return errs.New(errs.ErrKindConfig, "unknown source "+c.Source)
	}
	if c.RPCFunction == "" {
		return errs.New(errs.ErrKindConfig, "rpc function name must not be empty")
	}
	if c.Fetch.MaxAttempts < 1 {
		return errs.New(errs.ErrKindConfig, "fetch.max_attempts must be at least 1")
	}
	if c.Publish != nil {
		if c.Publish.Endpoint == "" || c.Publish.Bucket == "" {
			return errs.New(errs.ErrKindConfig, "publish requires endpoint and bucket")
		}
	}
	return nil
}
