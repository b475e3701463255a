// Package config loads TaskUp settings from defaults, TOML files, the
// environment and command-line flags, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskup/internal/calc"
)

// Source records where a setting's effective value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceUserFile Source = "user_file"
	SourceProjFile Source = "project_file"
	SourceEnv      Source = "env"
	SourceFlag     Source = "flag"
)

const (
	DefaultDirName         = ".taskup"
	DefaultFileName        = "taskup.toml"
	DefaultDBFileName      = "taskup.db"
	DefaultAddr            = "127.0.0.1:8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultServiceName     = "taskup"
)

type Config struct {
	DB        DBConfig        `toml:"db"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
	Risk      RiskConfig      `toml:"risk"`
	Telemetry TelemetryConfig `toml:"telemetry"`

	// Sources maps dotted keys ("server.addr") to where they were set.
	Sources map[string]Source `toml:"-"`
}

type DBConfig struct {
	Path string `toml:"path"`
}

type ServerConfig struct {
	Addr            string        `toml:"addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type RiskConfig struct {
	SeverityScale string `toml:"severity_scale"`
}

type TelemetryConfig struct {
	Enabled     bool   `toml:"enabled"`
	Endpoint    string `toml:"endpoint"`
	Insecure    bool   `toml:"insecure"`
	ServiceName string `toml:"service_name"`
}

// Default returns a config with every field at its default.
func Default() *Config {
	cfg := &Config{
		DB: DBConfig{Path: defaultDBPath()},
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Risk: RiskConfig{SeverityScale: calc.DefaultScale.Name},
		Telemetry: TelemetryConfig{
			Endpoint:    "localhost:4317",
			Insecure:    true,
			ServiceName: DefaultServiceName,
		},
		Sources: map[string]Source{},
	}
	for _, k := range keys() {
		cfg.Sources[k] = SourceDefault
	}
	return cfg
}

func keys() []string {
	return []string{
		"db.path",
		"server.addr",
		"server.shutdown_timeout",
		"log.level",
		"log.format",
		"risk.severity_scale",
		"telemetry.enabled",
		"telemetry.endpoint",
		"telemetry.insecure",
		"telemetry.service_name",
	}
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "console"}
)

// Validate checks enumerated fields and ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DB.Path) == "" {
		return fmt.Errorf("db.path is required")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if !oneOf(c.Log.Level, logLevels) {
		return fmt.Errorf("log.level %q is not one of %v", c.Log.Level, logLevels)
	}
	if !oneOf(c.Log.Format, logFormats) {
		return fmt.Errorf("log.format %q is not one of %v", c.Log.Format, logFormats)
	}
	if _, err := calc.ScaleByName(c.Risk.SeverityScale); err != nil {
		return fmt.Errorf("risk.severity_scale: %w", err)
	}
	if c.Telemetry.Enabled && strings.TrimSpace(c.Telemetry.Endpoint) == "" {
		return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
	}
	return nil
}

// Scale resolves the configured severity scale.
func (c *Config) Scale() calc.SeverityScale {
	s, err := calc.ScaleByName(c.Risk.SeverityScale)
	if err != nil {
		return calc.DefaultScale
	}
	return s
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
