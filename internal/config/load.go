package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Load builds the effective configuration:
// 1. defaults
// 2. user file (~/.taskup/taskup.toml)
// 3. project file (./taskup.toml or ./.taskup.toml), or explicitPath when set
// 4. TASKUP_* environment variables
//
// Flags are applied afterwards by the caller with ApplyFlags.
func Load(explicitPath string) (*Config, error) {
	return load(explicitPath, os.LookupEnv)
}

func load(explicitPath string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if p := findUserConfigFile(); p != "" {
		if err := loadConfigFile(cfg, p, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", p, err)
		}
	}

	projectFile := findProjectConfigFile()
	if explicitPath != "" {
		projectFile = expandPath(explicitPath)
		if existingFile(projectFile) == "" {
			return nil, fmt.Errorf("config file %s: %w", projectFile, os.ErrNotExist)
		}
	}
	if projectFile != "" {
		if err := loadConfigFile(cfg, projectFile, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectFile, err)
		}
	}

	if err := loadFromEnv(cfg, lookup); err != nil {
		return nil, err
	}

	cfg.DB.Path = expandPath(cfg.DB.Path)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadConfigFile decodes path over cfg and marks every key present in the
// file with source.
func loadConfigFile(cfg *Config, path string, source Source) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys: %v", undecoded)
	}
	for _, k := range keys() {
		if md.IsDefined(splitKey(k)...) {
			cfg.Sources[k] = source
		}
	}
	return nil
}

func splitKey(k string) []string {
	for i := 0; i < len(k); i++ {
		if k[i] == '.' {
			return []string{k[:i], k[i+1:]}
		}
	}
	return []string{k}
}

// envBinding maps one TASKUP_* variable onto a config key.
type envBinding struct {
	name string
	key  string
	set  func(cfg *Config, v string) error
}

var envBindings = []envBinding{
	{"TASKUP_DB", "db.path", func(c *Config, v string) error { c.DB.Path = v; return nil }},
	{"TASKUP_ADDR", "server.addr", func(c *Config, v string) error { c.Server.Addr = v; return nil }},
	{"TASKUP_SHUTDOWN_TIMEOUT", "server.shutdown_timeout", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Server.ShutdownTimeout = d
		return nil
	}},
	{"TASKUP_LOG_LEVEL", "log.level", func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{"TASKUP_LOG_FORMAT", "log.format", func(c *Config, v string) error { c.Log.Format = v; return nil }},
	{"TASKUP_SEVERITY_SCALE", "risk.severity_scale", func(c *Config, v string) error { c.Risk.SeverityScale = v; return nil }},
	{"TASKUP_OTEL_ENABLED", "telemetry.enabled", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.Telemetry.Enabled = b
		return err
	}},
	{"TASKUP_OTEL_ENDPOINT", "telemetry.endpoint", func(c *Config, v string) error { c.Telemetry.Endpoint = v; return nil }},
	{"TASKUP_OTEL_INSECURE", "telemetry.insecure", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.Telemetry.Insecure = b
		return err
	}},
	{"TASKUP_OTEL_SERVICE_NAME", "telemetry.service_name", func(c *Config, v string) error { c.Telemetry.ServiceName = v; return nil }},
}

func loadFromEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		v, ok := lookup(b.name)
		if !ok || v == "" {
			continue
		}
		if err := b.set(cfg, v); err != nil {
			return fmt.Errorf("%s=%q: %w", b.name, v, err)
		}
		cfg.Sources[b.key] = SourceEnv
	}
	return nil
}
