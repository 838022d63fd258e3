package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "LOSTFOUND"

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
	// ConnectMaxAttempts bounds the startup connection retries
	ConnectMaxAttempts int
	// ConnectBaseDelay is the first retry delay; each later one doubles it
	ConnectBaseDelay time.Duration
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	AutoMigrate      bool
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	Host string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	ServiceName       string
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.lostfound")
	v.AddConfigPath("/etc/lostfound")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found; this is OK if we have env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	dbURL := v.GetString("database_url")
	if dbURL == "" {
		// Hosting platforms inject the bare name
		dbURL = os.Getenv("DATABASE_URL")
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL:                dbURL,
			ConnectMaxAttempts: v.GetInt("db_connect_max_attempts"),
			ConnectBaseDelay:   v.GetDuration("db_connect_base_delay"),
			MaxOpenConns:       v.GetInt("db_max_open_conns"),
			MaxIdleConns:       v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime:    v.GetDuration("db_conn_max_lifetime"),
			AutoMigrate:        v.GetBool("db_auto_migrate"),
		},
		Server: ServerConfig{
			Port: v.GetInt("http_server_port"),
			Host: v.GetString("http_server_host"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry_enabled"),
			JaegerURL:         v.GetString("jaeger_url"),
			PrometheusEnabled: v.GetBool("prometheus_enabled"),
			ServiceName:       v.GetString("service_name"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "")
	v.SetDefault("db_connect_max_attempts", 5)
	v.SetDefault("db_connect_base_delay", 500*time.Millisecond)
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 10)
	v.SetDefault("db_conn_max_lifetime", time.Hour)
	v.SetDefault("db_auto_migrate", true)
	v.SetDefault("http_server_port", 3001)
	v.SetDefault("http_server_host", "0.0.0.0")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("log_format", "json")
	v.SetDefault("telemetry_enabled", false)
	v.SetDefault("jaeger_url", "")
	v.SetDefault("prometheus_enabled", true)
	v.SetDefault("service_name", "lostfound")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database_url is required")
	}
	if c.Database.ConnectMaxAttempts < 1 || c.Database.ConnectMaxAttempts > 20 {
		return fmt.Errorf("db_connect_max_attempts must be between 1 and 20")
	}
	if c.Database.ConnectBaseDelay <= 0 {
		return fmt.Errorf("db_connect_base_delay must be positive")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("db_max_open_conns must be at least 1")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("http_server_port must be between 1 and 65535")
	}
	return nil
}
