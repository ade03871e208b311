// Package config loads blogapi.yaml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "blogapi.yaml"

const (
	EnvProfile     = "BLOGAPI_ENV"
	EnvDatabaseURL = "BLOGAPI_DATABASE_URL"
	EnvAddr        = "BLOGAPI_ADDR"
	EnvLogLevel    = "BLOGAPI_LOG_LEVEL"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Playground      bool          `yaml:"playground"`
}

type DatabaseConfig struct {
	URL          string                         `yaml:"url"`
	Pool         PoolConfig                     `yaml:"pool"`
	Environments map[string]EnvironmentDatabase `yaml:"environments"`
}

type PoolConfig struct {
	MaxConns          int32         `yaml:"max_conns"`
	MinConns          int32         `yaml:"min_conns"`
	MaxConnLifetime   time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `yaml:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `yaml:"health_check_period"`
}

type EnvironmentDatabase struct {
	URL string `yaml:"url"`
}

type ObservabilityConfig struct {
	Log     LogConfig     `yaml:"log"`
	ORM     ORMConfig     `yaml:"orm"`
	Tracing TracingConfig `yaml:"tracing"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ORMConfig toggles per-statement instrumentation.
type ORMConfig struct {
	QueryLogging   bool `yaml:"query_logging"`
	EmitSpans      bool `yaml:"emit_spans"`
	CorrelationIDs bool `yaml:"correlation_ids"`
}

// TracingConfig enables OTLP export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":4000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			Playground:      true,
		},
		Observability: ObservabilityConfig{
			Log:     LogConfig{Level: "info", Format: "json"},
			ORM:     ORMConfig{CorrelationIDs: true},
			Tracing: TracingConfig{Insecure: true, ServiceName: "blogapi"},
			Metrics: MetricsConfig{Enabled: true},
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultFile
	}
	cfg := Default()
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, err
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Observability.Log.Level = v
	}
}

// Profile returns the environment profile, falling back to dev.
func Profile(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvProfile); env != "" {
		return env
	}
	return "dev"
}

// DatabaseURL resolves the connection string for profile. The profile entry
// overrides database.url and BLOGAPI_DATABASE_URL overrides both.
func (c Config) DatabaseURL(profile string) string {
	dsn := c.Database.URL
	if env, ok := c.Database.Environments[profile]; ok && env.URL != "" {
		dsn = env.URL
	}
	if override := os.Getenv(EnvDatabaseURL); override != "" {
		dsn = override
	}
	return dsn
}

// Profiles lists the configured environment names.
func (c Config) Profiles() []string {
	names := make([]string, 0, len(c.Database.Environments))
	for name := range c.Database.Environments {
		names = append(names, name)
	}
	return names
}
