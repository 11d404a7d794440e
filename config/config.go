package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Redis (link records + click log)
	Redis RedisConfig `mapstructure:"redis"`

	// PostgreSQL (click archive warehouse)
	Postgres PostgresConfig `mapstructure:"postgres"`

	// NATS
	NATS NATSConfig `mapstructure:"nats"`

	// Prometheus
	Prometheus PrometheusConfig `mapstructure:"prometheus"`

	// Resolver behavior
	Resolver ResolverConfig `mapstructure:"resolver"`

	// GeoIP
	Geo GeoConfig `mapstructure:"geo"`

	// Click archive
	Archive ArchiveConfig `mapstructure:"archive"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	Database          string `mapstructure:"database"`
	Port              int    `mapstructure:"port"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   string `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   string `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod string `mapstructure:"health_check_period"`
}

type NATSConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	MonitorPort int    `mapstructure:"monitor_port"`
}

type PrometheusConfig struct {
	Port int `mapstructure:"port"`
}

// ResolverConfig drives the link resolution policy.
type ResolverConfig struct {
	// TrustProxy enables client IP resolution from a forwarded header.
	TrustProxy bool `mapstructure:"trust_proxy"`
	// TrustProxyHeader names the header to trust; cf-connecting-ip when empty.
	TrustProxyHeader string `mapstructure:"trust_proxy_header"`
	// RedirectStatus is the status used for plain redirects (302 when zero).
	RedirectStatus int `mapstructure:"redirect_status"`
	// CookieSecret signs the password-proof cookie.
	CookieSecret string `mapstructure:"cookie_secret"`
	// DeepLinkFallbackMS bounds how long the deep-link page waits before
	// falling back to the plain destination.
	DeepLinkFallbackMS int `mapstructure:"deeplink_fallback_ms"`
}

type GeoConfig struct {
	// DatabasePath points at a MaxMind City mmdb file. Empty disables
	// geo enrichment; clicks are still recorded with unknown geo.
	DatabasePath string `mapstructure:"database_path"`
}

type ArchiveConfig struct {
	// Retention is how long archived click rows are kept, e.g. "2160h".
	Retention string `mapstructure:"retention"`
}

func Load() (*Config, error) {
	// Load local .env for development (ignored when missing).
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Search for config/config.yaml (plus root for overrides).
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Allow environment variables to override YAML entries.
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Preserve legacy env variable names.
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// PostgreSQL
	v.BindEnv("postgres.host", "PG_HOST")
	v.BindEnv("postgres.user", "PG_USER")
	v.BindEnv("postgres.password", "PG_PASSWORD")
	v.BindEnv("postgres.database", "PG_DB")
	v.BindEnv("postgres.port", "PG_PORT")
	v.BindEnv("postgres.sslmode", "PG_SSLMODE")

	// NATS
	v.BindEnv("nats.host", "NATS_HOST")
	v.BindEnv("nats.port", "NATS_PORT")
	v.BindEnv("nats.user", "NATS_USER")
	v.BindEnv("nats.password", "NATS_PASSWORD")
	v.BindEnv("nats.monitor_port", "NATS_MONITOR_PORT")

	// Prometheus
	v.BindEnv("prometheus.port", "PROM_PORT")

	// Resolver
	v.BindEnv("resolver.trust_proxy", "TRUST_PROXY")
	v.BindEnv("resolver.trust_proxy_header", "TRUST_PROXY_HEADER")
	v.BindEnv("resolver.redirect_status", "REDIRECT_STATUS")
	v.BindEnv("resolver.cookie_secret", "COOKIE_SECRET")
	v.BindEnv("resolver.deeplink_fallback_ms", "DEEPLINK_FALLBACK_MS")

	// GeoIP
	v.BindEnv("geo.database_path", "GEOIP_DB")

	// Archive
	v.BindEnv("archive.retention", "CLICK_RETENTION")
}
