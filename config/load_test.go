package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, names := range envBindings {
		for _, n := range names {
			t.Setenv(n, "")
		}
	}
	for _, n := range []string{"APP_SERVER_SHUTDOWNTIMEOUT", "APP_LOGGING_MAXSIZE", "APP_LOGGING_MAXFILES", "APP_LOGGING_TIMEZONE"} {
		t.Setenv(n, "")
	}
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	app, err := Load(LoadOptions{Dir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, app.Env)
	assert.False(t, app.Production())
	assert.Equal(t, 3000, app.Server.Port)
	assert.Equal(t, 10*time.Second, app.Server.ShutdownTimeout)
	assert.Equal(t, "info", app.Logging.Level)
	assert.Equal(t, "json", app.Logging.Format)
	assert.Equal(t, "logs", app.Logging.Directory)
	assert.Equal(t, "20m", app.Logging.MaxSize)
	assert.Equal(t, "14d", app.Logging.MaxFiles)
	assert.Equal(t, 1000, app.Logging.ShutdownTimeoutMS)
}

func TestLoad_FilesAreLayered(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "default.yaml", `
server:
  port: 8080
logging:
  level: debug
  format: pretty
  maxFiles: "10"
`)
	writeFile(t, dir, "production.yaml", `
logging:
  level: warn
  format: json
  directory: /var/log/app
`)

	app, err := Load(LoadOptions{Dir: dir, Env: EnvProduction})
	require.NoError(t, err)

	assert.True(t, app.Production())
	assert.Equal(t, 8080, app.Server.Port)
	assert.Equal(t, "warn", app.Logging.Level)
	assert.Equal(t, "json", app.Logging.Format)
	assert.Equal(t, "/var/log/app", app.Logging.Directory)
	assert.Equal(t, "10", app.Logging.MaxFiles)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "default.yaml", "server:\n  port: 8080\n")

	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "http")
	t.Setenv("LOG_DIR", "/tmp/applogs")
	t.Setenv("LOG_TO_CONSOLE", "true")
	t.Setenv("APP_LOGGING_MAXSIZE", "512k")
	t.Setenv("APP_SERVER_SHUTDOWNTIMEOUT", "3s")

	app, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, 9090, app.Server.Port)
	assert.Equal(t, "http", app.Logging.Level)
	assert.Equal(t, "/tmp/applogs", app.Logging.Directory)
	assert.True(t, app.Logging.ForceConsole)
	assert.Equal(t, "512k", app.Logging.MaxSize)
	assert.Equal(t, 3*time.Second, app.Server.ShutdownTimeout)
}

func TestLoad_EnvSelectsFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "test.yaml", "logging:\n  level: error\n")
	t.Setenv("APP_ENV", EnvTest)

	app, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, EnvTest, app.Env)
	assert.Equal(t, "error", app.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "malformed yaml", file: "logging: [level\n"},
		{name: "unknown level", env: map[string]string{"LOG_LEVEL": "verbose"}},
		{name: "bad size", env: map[string]string{"APP_LOGGING_MAXSIZE": "20x"}},
		{name: "bad retention", env: map[string]string{"APP_LOGGING_MAXFILES": "0d"}},
		{name: "bad port", env: map[string]string{"PORT": "70000"}},
		{name: "bad time zone", env: map[string]string{"APP_LOGGING_TIMEZONE": "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			if tt.file != "" {
				writeFile(t, dir, "default.yaml", tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			app, err := Load(LoadOptions{Dir: dir})
			assert.Error(t, err)
			assert.Nil(t, app)
		})
	}
}
