package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/gommon/random"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds every runtime setting. Values come from environment
// variables first, then an optional config file, then defaults.
type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	AccessTokenExpiry  time.Duration `mapstructure:"ACCESS_TOKEN_EXPIRY"`
	RefreshTokenExpiry time.Duration `mapstructure:"REFRESH_TOKEN_EXPIRY"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`

	// Replenishment engine tuning.
	UsageWindowDays  int `mapstructure:"USAGE_WINDOW_DAYS"`
	MinReorderPoint  int `mapstructure:"MIN_REORDER_POINT"`
	AlertMonitorMins int `mapstructure:"ALERT_MONITOR_MINS"`
	StatsRefreshMins int `mapstructure:"STATS_REFRESH_MINS"`
}

// Load reads configuration from the environment and an optional
// config file (CONFIG_FILE, defaults to looking for app.env in cwd).
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("ACCESS_TOKEN_EXPIRY", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_BUCKET", "dataclinica-reports")
	v.SetDefault("USAGE_WINDOW_DAYS", 30)
	v.SetDefault("MIN_REORDER_POINT", 1)
	v.SetDefault("ALERT_MONITOR_MINS", 30)
	v.SetDefault("STATS_REFRESH_MINS", 5)

	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		if cfg.Environment != "development" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		// Sessions won't survive a restart; acceptable in development only.
		cfg.JWTSecret = random.String(32)
		log.Warn().Msg("JWT_SECRET not set, generated a random development secret")
	}
	if cfg.UsageWindowDays <= 0 {
		return nil, fmt.Errorf("USAGE_WINDOW_DAYS must be positive")
	}
	if cfg.MinReorderPoint < 0 {
		return nil, fmt.Errorf("MIN_REORDER_POINT cannot be negative")
	}

	return &cfg, nil
}
