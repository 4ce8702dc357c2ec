package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtmp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found.
	chtmp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "finprospect.db", cfg.Store.SQLitePath)
	assert.Equal(t, 30, cfg.Sources.TimeoutSecs)
	assert.Equal(t, 50, cfg.Sources.MaxResults)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 6, cfg.Scheduler.IntervalHours)
	assert.Equal(t, 60, cfg.Scheduler.WarmUpSecs)
	assert.Equal(t, 20, cfg.Scheduler.BatchSize)
	assert.Equal(t, 500, cfg.Scheduler.DelayMillis)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "companies.xlsx", cfg.Export.Output)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	chtmp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/finprospect
scheduler:
  batch_size: 5
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/finprospect", cfg.Store.DatabaseURL)
	assert.Equal(t, 5, cfg.Scheduler.BatchSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values.
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chtmp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0644))

	t.Setenv("FINPROSPECT_STORE_DRIVER", "postgres")
	t.Setenv("FINPROSPECT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chtmp(t)

	t.Setenv("FINPROSPECT_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

func validSQLite() *Config {
	return &Config{
		Store:     StoreConfig{Driver: "sqlite", SQLitePath: "test.db"},
		Sources:   SourcesConfig{TimeoutSecs: 30, MaxResults: 50},
		Scheduler: SchedulerConfig{Enabled: true, IntervalHours: 6, BatchSize: 20},
		Server:    ServerConfig{Port: 8080},
	}
}

func TestValidateStoreModes(t *testing.T) {
	for _, mode := range []string{"enrich", "export", "seed", "migrate"} {
		assert.NoError(t, validSQLite().Validate(mode), mode)

		cfg := validSQLite()
		cfg.Store.Driver = "postgres"
		err := cfg.Validate(mode)
		require.Error(t, err, mode)
		assert.Contains(t, err.Error(), "store.database_url is required")
	}
}

func TestValidateUnknownDriver(t *testing.T) {
	cfg := validSQLite()
	cfg.Store.Driver = "oracle"
	err := cfg.Validate("enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be postgres or sqlite")
}

func TestValidateServe(t *testing.T) {
	assert.NoError(t, validSQLite().Validate("serve"))

	cfg := validSQLite()
	cfg.Server.Port = 0
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	cfg = validSQLite()
	cfg.Scheduler.BatchSize = 0
	err = cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduler.batch_size")

	// Disabled scheduler skips its checks.
	cfg = validSQLite()
	cfg.Scheduler.Enabled = false
	cfg.Scheduler.BatchSize = 0
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateSearch(t *testing.T) {
	assert.NoError(t, validSQLite().Validate("search"))

	cfg := validSQLite()
	cfg.Sources.MaxResults = 0
	err := cfg.Validate("search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sources.max_results")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validSQLite().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
