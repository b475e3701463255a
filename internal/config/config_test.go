package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at fresh temp dirs so no
// real config file leaks into the test.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	work = t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(work)
	return home, work
}

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	home, _ := isolate(t)

	cfg, err := load("", noEnv)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".taskup", "taskup.db"), cfg.DB.Path)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "detail", cfg.Risk.SeverityScale)
	assert.False(t, cfg.Telemetry.Enabled)
	for _, k := range keys() {
		assert.Equal(t, SourceDefault, cfg.Sources[k], k)
	}
}

func TestLoad_Layering(t *testing.T) {
	home, work := isolate(t)
	writeFile(t, filepath.Join(home, ".taskup", "taskup.toml"), `
[server]
addr = ":9000"
shutdown_timeout = "3s"

[risk]
severity_scale = "edit"
`)
	writeFile(t, filepath.Join(work, "taskup.toml"), `
[server]
addr = ":9100"

[log]
level = "warn"
`)

	cfg, err := load("", envMap(map[string]string{"TASKUP_LOG_LEVEL": "error"}))
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, SourceProjFile, cfg.Sources["server.addr"])
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, SourceUserFile, cfg.Sources["server.shutdown_timeout"])
	assert.Equal(t, "edit", cfg.Risk.SeverityScale)
	assert.Equal(t, "edit", cfg.Scale().Name)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, SourceEnv, cfg.Sources["log.level"])
}

func TestLoad_ExplicitPathReplacesProjectFile(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, "taskup.toml"), "[server]\naddr = \":1111\"\n")
	explicit := filepath.Join(t.TempDir(), "other.toml")
	writeFile(t, explicit, "[server]\naddr = \":2222\"\n")

	cfg, err := load(explicit, noEnv)
	require.NoError(t, err)
	assert.Equal(t, ":2222", cfg.Server.Addr)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	isolate(t)
	_, err := load(filepath.Join(t.TempDir(), "nope.toml"), noEnv)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, "taskup.toml"), "[server]\nport = 80\n")

	_, err := load("", noEnv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad scale", map[string]string{"TASKUP_SEVERITY_SCALE": "fuzzy"}, "severity_scale"},
		{"bad level", map[string]string{"TASKUP_LOG_LEVEL": "loud"}, "log.level"},
		{"bad format", map[string]string{"TASKUP_LOG_FORMAT": "xml"}, "log.format"},
		{"bad duration", map[string]string{"TASKUP_SHUTDOWN_TIMEOUT": "soon"}, "TASKUP_SHUTDOWN_TIMEOUT"},
		{"bad bool", map[string]string{"TASKUP_OTEL_ENABLED": "maybe"}, "TASKUP_OTEL_ENABLED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := load("", envMap(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_TelemetryFromEnv(t *testing.T) {
	isolate(t)
	cfg, err := load("", envMap(map[string]string{
		"TASKUP_OTEL_ENABLED":  "true",
		"TASKUP_OTEL_ENDPOINT": "collector:4317",
		"TASKUP_OTEL_INSECURE": "false",
	}))
	require.NoError(t, err)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "collector:4317", cfg.Telemetry.Endpoint)
	assert.False(t, cfg.Telemetry.Insecure)
}

func TestApplyFlags(t *testing.T) {
	isolate(t)
	cfg, err := load("", noEnv)
	require.NoError(t, err)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(FlagDB, "", "")
	fs.String(FlagAddr, "", "")
	fs.String(FlagScale, "", "")
	fs.Bool(FlagVerbose, false, "")
	require.NoError(t, fs.Parse([]string{"--addr", ":7000", "--verbose", "--severity-scale", "edit"}))

	require.NoError(t, cfg.ApplyFlags(fs))
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "edit", cfg.Risk.SeverityScale)
	assert.Equal(t, SourceFlag, cfg.Sources["server.addr"])
	// --db was not passed, so the default survives.
	assert.Equal(t, SourceDefault, cfg.Sources["db.path"])
}

func TestApplyFlags_InvalidScale(t *testing.T) {
	cfg := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(FlagScale, "", "")
	require.NoError(t, fs.Parse([]string{"--severity-scale", "nope"}))

	assert.Error(t, cfg.ApplyFlags(fs))
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TASKUP_TEST_DIR", "/var/data")

	assert.Equal(t, filepath.Join(home, "x.db"), expandPath("~/x.db"))
	assert.Equal(t, "/var/data/x.db", expandPath("$TASKUP_TEST_DIR/x.db"))
	assert.Equal(t, "", expandPath(""))
}
