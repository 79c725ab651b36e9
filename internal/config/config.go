package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port      int             `yaml:"port"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig is a per-caller token bucket. RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type GatewayConfig struct {
	Port        int                    `yaml:"port"`
	ServerURL   string                 `yaml:"server_url"`
	Timeout     time.Duration          `yaml:"timeout"`
	CORSOrigins []string               `yaml:"cors_origins"`
	RateLimit   GatewayRateLimitConfig `yaml:"rate_limit"`
}

// GatewayRateLimitConfig is a fixed window per caller. Requests 0 disables limiting.
type GatewayRateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type DatabaseConfig struct {
	Driver         string         `yaml:"driver"`
	Path           string         `yaml:"path"`
	Postgres       PostgresConfig `yaml:"postgres"`
	ConnectRetries int            `yaml:"connect_retries"`
}

type PostgresConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	DBName         string `yaml:"dbname"`
	SSLMode        string `yaml:"sslmode"`
	MaxConnections int    `yaml:"max_connections"`
}

// DSN builds a libpq connection URL.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:   "/" + p.DBName,
	}
	q := u.Query()
	q.Set("sslmode", p.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval"`
	RetentionDays int           `yaml:"retention_days"`
	StoragePath   string        `yaml:"storage_path"`
}

// MonitoringConfig: каждый уровень слушает /metrics на своем порту.
type MonitoringConfig struct {
	PrometheusEnabled     bool `yaml:"prometheus_enabled"`
	PrometheusPort        int  `yaml:"prometheus_port"`
	GatewayPrometheusPort int  `yaml:"gateway_prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3":
		if c.Database.Path == "" {
			return errors.New("database path is required")
		}
	case "pgx":
		if c.Database.Postgres.Host == "" || c.Database.Postgres.DBName == "" {
			return errors.New("postgres host and dbname are required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Server.Port == c.Gateway.Port {
		return fmt.Errorf("server and gateway ports must differ, both are %d", c.Server.Port)
	}

	if _, err := url.ParseRequestURI(c.Gateway.ServerURL); err != nil {
		return fmt.Errorf("invalid gateway server_url: %w", err)
	}

	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == c.Monitoring.GatewayPrometheusPort {
		return fmt.Errorf("server and gateway metrics ports must differ, both are %d", c.Monitoring.PrometheusPort)
	}

	if c.Server.RateLimit.RPS < 0 || c.Gateway.RateLimit.Requests < 0 {
		return errors.New("rate limits must not be negative")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "shareit"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 9090
	}
	if c.Server.RateLimit.RPS > 0 && c.Server.RateLimit.Burst == 0 {
		c.Server.RateLimit.Burst = int(c.Server.RateLimit.RPS) + 1
	}
	if c.Gateway.Port == 0 {
		c.Gateway.Port = 8080
	}
	if c.Gateway.ServerURL == "" {
		c.Gateway.ServerURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Gateway.Timeout == 0 {
		c.Gateway.Timeout = 10 * time.Second
	}
	if c.Gateway.RateLimit.Requests > 0 && c.Gateway.RateLimit.Window == 0 {
		c.Gateway.RateLimit.Window = time.Minute
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite3"
	}
	if c.Database.Driver == "sqlite3" && c.Database.Path == "" {
		c.Database.Path = "data/shareit.db"
	}
	if c.Database.Postgres.Port == 0 {
		c.Database.Postgres.Port = 5432
	}
	if c.Database.Postgres.SSLMode == "" {
		c.Database.Postgres.SSLMode = "disable"
	}
	if c.Database.ConnectRetries == 0 {
		c.Database.ConnectRetries = 5
	}
	if c.Backup.Interval == 0 {
		c.Backup.Interval = 24 * time.Hour
	}
	if c.Backup.RetentionDays == 0 {
		c.Backup.RetentionDays = 7
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9100
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.GatewayPrometheusPort == 0 {
		c.Monitoring.GatewayPrometheusPort = 9101
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}
