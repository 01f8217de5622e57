package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Upstream UpstreamConfig
	Redis    RedisConfig
	Audit    AuditConfig
	Session  SessionConfig
	CORS     CORSConfig
	Log      LogConfig
	Stats    StatsConfig
	Exports  ExportsConfig
}

// UpstreamConfig points the gateway at the INGENZI platform API.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuditConfig controls the console action trail persisted to Postgres.
type AuditConfig struct {
	Enabled      bool
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	Workers      int
	QueueSize    int
	Retention    time.Duration
}

// SessionConfig tunes browser session persistence.
type SessionConfig struct {
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// StatsConfig governs the dashboard statistics refresher.
type StatsConfig struct {
	Enabled         bool
	RefreshInterval time.Duration
}

// ExportsConfig controls screen export storage and signed download URLs.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	CleanupInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Upstream = UpstreamConfig{
		BaseURL: strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 15*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Audit = AuditConfig{
		Enabled:      v.GetBool("ENABLE_AUDIT"),
		Host:         v.GetString("AUDIT_DB_HOST"),
		Port:         v.GetInt("AUDIT_DB_PORT"),
		User:         v.GetString("AUDIT_DB_USER"),
		Password:     v.GetString("AUDIT_DB_PASSWORD"),
		Name:         v.GetString("AUDIT_DB_NAME"),
		SSLMode:      v.GetString("AUDIT_DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("AUDIT_DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("AUDIT_DB_MAX_IDLE_CONNS"),
		Workers:      v.GetInt("AUDIT_WORKERS"),
		QueueSize:    v.GetInt("AUDIT_QUEUE_SIZE"),
		Retention:    parseDuration(v.GetString("AUDIT_RETENTION"), 90*24*time.Hour),
	}

	cfg.Session = SessionConfig{
		TTL:          parseDuration(v.GetString("SESSION_TTL"), 12*time.Hour),
		CookieName:   v.GetString("SESSION_COOKIE_NAME"),
		CookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Stats = StatsConfig{
		Enabled:         v.GetBool("ENABLE_STATS_REFRESH"),
		RefreshInterval: parseDuration(v.GetString("STATS_REFRESH_INTERVAL"), 30*time.Second),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 30*time.Minute),
		CleanupInterval: parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:9000")
	v.SetDefault("UPSTREAM_TIMEOUT", "15s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_AUDIT", false)
	v.SetDefault("AUDIT_DB_HOST", "localhost")
	v.SetDefault("AUDIT_DB_PORT", 5432)
	v.SetDefault("AUDIT_DB_USER", "postgres")
	v.SetDefault("AUDIT_DB_PASSWORD", "postgres")
	v.SetDefault("AUDIT_DB_NAME", "ingenzi_console")
	v.SetDefault("AUDIT_DB_SSL_MODE", "disable")
	v.SetDefault("AUDIT_DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("AUDIT_DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("AUDIT_WORKERS", 1)
	v.SetDefault("AUDIT_QUEUE_SIZE", 64)
	v.SetDefault("AUDIT_RETENTION", "2160h")

	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("SESSION_COOKIE_NAME", "ingenzi_session")
	v.SetDefault("SESSION_COOKIE_SECURE", false)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_STATS_REFRESH", true)
	v.SetDefault("STATS_REFRESH_INTERVAL", "30s")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "30m")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
