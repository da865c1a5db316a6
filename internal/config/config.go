package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"habitsync/internal/crypto"
	"habitsync/internal/db"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Crypto    CryptoConfig
	Log       LogConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig

	DefaultTimezone string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Driver string
	URL    string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type CryptoConfig struct {
	EncryptionKey []byte
	BlindIndexKey []byte
}

type LogConfig struct {
	Level string
	File  string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", db.DriverPostgres)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("DEFAULT_TIMEZONE", "UTC")
}

// Load reads a .env file when one exists, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	v := viper.New()
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from v, applying defaults and validating required keys.
func FromViper(v *viper.Viper) (*Config, error) {
	defaults(v)

	cfg := &Config{
		Server:   ServerConfig{Port: v.GetString("PORT")},
		Database: DatabaseConfig{Driver: v.GetString("DB_DRIVER"), URL: v.GetString("DATABASE_URL")},
		JWT:      JWTConfig{Secret: v.GetString("JWT_SECRET"), TTL: v.GetDuration("JWT_TTL")},
		Log:      LogConfig{Level: v.GetString("LOG_LEVEL"), File: v.GetString("LOG_FILE")},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
		DefaultTimezone: v.GetString("DEFAULT_TIMEZONE"),
	}
	for _, o := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, o)
		}
	}

	switch cfg.Database.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return nil, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", db.DriverPostgres, db.DriverSQLite, cfg.Database.Driver)
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.JWT.TTL <= 0 {
		return nil, errors.New("JWT_TTL must be positive")
	}

	var err error
	if cfg.Crypto.EncryptionKey, err = crypto.DecodeKey(v.GetString("ENCRYPTION_KEY")); err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY: %w", err)
	}
	if cfg.Crypto.BlindIndexKey, err = crypto.DecodeKey(v.GetString("BLIND_INDEX_KEY")); err != nil {
		return nil, fmt.Errorf("BLIND_INDEX_KEY: %w", err)
	}
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return nil, fmt.Errorf("DEFAULT_TIMEZONE: %w", err)
	}
	return cfg, nil
}
