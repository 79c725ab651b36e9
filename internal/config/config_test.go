package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SHAREIT_DB_PATH", "from-env.db")

	path := writeConfig(t, `
app:
  name: "shareit-test"
  environment: "test"
server:
  port: 9191
  rate_limit:
    rps: 5
gateway:
  port: 8181
  server_url: "http://server:9191"
  timeout: 3s
  rate_limit:
    requests: 100
database:
  path: "${SHAREIT_DB_PATH}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "shareit-test", cfg.App.Name)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 6, cfg.Server.RateLimit.Burst)
	assert.Equal(t, "http://server:9191", cfg.Gateway.ServerURL)
	assert.Equal(t, 3*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, time.Minute, cfg.Gateway.RateLimit.Window)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "from-env.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: x\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8080, cfg.Gateway.Port)
	assert.Equal(t, "http://localhost:9090", cfg.Gateway.ServerURL)
	assert.Equal(t, "data/shareit.db", cfg.Database.Path)
	assert.Equal(t, 5, cfg.Database.ConnectRetries)
	assert.Equal(t, 24*time.Hour, cfg.Backup.Interval)
}

func TestLoadConfig_MetricsPortsPerTier(t *testing.T) {
	t.Setenv("METRICS_PORT", "")
	t.Setenv("GATEWAY_METRICS_PORT", "")

	cfg, err := Load(writeConfig(t, `
monitoring:
  prometheus_enabled: true
  prometheus_port: ${METRICS_PORT}
  gateway_prometheus_port: ${GATEWAY_METRICS_PORT}
`))
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Monitoring.PrometheusPort)
	assert.Equal(t, 9101, cfg.Monitoring.GatewayPrometheusPort)

	_, err = Load(writeConfig(t, `
monitoring:
  prometheus_enabled: true
  prometheus_port: 9200
  gateway_prometheus_port: 9200
`))
	assert.ErrorContains(t, err, "metrics ports must differ")
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [broken"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "database:\n  driver: mysql\n"))
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 9090},
			Gateway:  GatewayConfig{Port: 8080, ServerURL: "http://localhost:9090"},
			Database: DatabaseConfig{Driver: "sqlite3", Path: "path"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(_ *Config) {}},
		{name: "missing sqlite path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "postgres without host", mutate: func(c *Config) { c.Database.Driver = "pgx" }, wantErr: true},
		{
			name: "postgres",
			mutate: func(c *Config) {
				c.Database.Driver = "pgx"
				c.Database.Postgres = PostgresConfig{Host: "db", DBName: "shareit"}
			},
		},
		{name: "same ports", mutate: func(c *Config) { c.Gateway.Port = 9090 }, wantErr: true},
		{name: "bad server url", mutate: func(c *Config) { c.Gateway.ServerURL = "not a url" }, wantErr: true},
		{
			name: "shared metrics port",
			mutate: func(c *Config) {
				c.Monitoring = MonitoringConfig{PrometheusEnabled: true, PrometheusPort: 9100, GatewayPrometheusPort: 9100}
			},
			wantErr: true,
		},
		{name: "negative rps", mutate: func(c *Config) { c.Server.RateLimit.RPS = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "share", Password: "p@ss", DBName: "shareit", SSLMode: "disable"}
	assert.Equal(t, "postgres://share:p%40ss@db:5432/shareit?sslmode=disable", p.DSN())
}
