package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Tracking  TrackingConfig  `mapstructure:"tracking"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// CatalogConfig selects where the place catalog comes from: "embedded"
// (default, zero dependencies) or "postgres".
type CatalogConfig struct {
	Source string `mapstructure:"source"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

// RoutingConfig tunes synthetic route generation.
type RoutingConfig struct {
	AverageSpeedMps float64 `mapstructure:"average_speed_mps"`
	PathPoints      int     `mapstructure:"path_points"`
	JitterFraction  float64 `mapstructure:"jitter_fraction"`
}

// PricingConfig tunes the fare calculator; the per-tier rate card itself
// stays in code.
type PricingConfig struct {
	Currency        string  `mapstructure:"currency"`
	SurgeMultiplier float64 `mapstructure:"surge_multiplier"`
}

// TrackingConfig tunes simulated tracking sessions.
type TrackingConfig struct {
	UpdateIntervalMs int     `mapstructure:"update_interval_ms"`
	SpeedFactor      float64 `mapstructure:"speed_factor"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("catalog.source", "embedded")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "hailgo")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "hailgo")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("routing.average_speed_mps", 11.1)
	v.SetDefault("routing.path_points", 20)
	v.SetDefault("routing.jitter_fraction", 0.05)
	v.SetDefault("pricing.currency", "USD")
	v.SetDefault("pricing.surge_multiplier", 1.2)
	v.SetDefault("tracking.update_interval_ms", 1000)
	v.SetDefault("tracking.speed_factor", 1.0)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: HAILGO_TRACKING_SPEED_FACTOR → tracking.speed_factor
	v.SetEnvPrefix("HAILGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	switch c.Catalog.Source {
	case "embedded", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("catalog.source must be embedded or postgres, got %q", c.Catalog.Source))
	}
	if c.Catalog.Source == "postgres" {
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey is enabled")
	}
	if c.Routing.AverageSpeedMps <= 0 {
		errs = append(errs, "routing.average_speed_mps must be positive")
	}
	if c.Routing.PathPoints < 2 || c.Routing.PathPoints > 50 {
		errs = append(errs, fmt.Sprintf("routing.path_points must be 2-50, got %d", c.Routing.PathPoints))
	}
	if c.Routing.JitterFraction < 0 || c.Routing.JitterFraction > 0.5 {
		errs = append(errs, fmt.Sprintf("routing.jitter_fraction must be 0-0.5, got %g", c.Routing.JitterFraction))
	}
	if c.Pricing.SurgeMultiplier < 1 {
		errs = append(errs, fmt.Sprintf("pricing.surge_multiplier must be >= 1, got %g", c.Pricing.SurgeMultiplier))
	}
	if c.Tracking.UpdateIntervalMs <= 0 {
		errs = append(errs, "tracking.update_interval_ms must be positive")
	}
	if c.Tracking.SpeedFactor <= 0 {
		errs = append(errs, "tracking.speed_factor must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
