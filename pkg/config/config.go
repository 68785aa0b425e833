package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Catalog   CatalogConfig
	JWT       JWTConfig
	Scheduler SchedulerConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// CatalogConfig points at the platform catalog API that resolves product
// details per tenant.
type CatalogConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type JWTConfig struct {
	SecretKey string
}

type SchedulerConfig struct {
	Enabled               bool
	TrendingInterval      time.Duration
	ActivityRetentionDays int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	catalogTimeout, err := time.ParseDuration(getEnv("CATALOG_TIMEOUT", "5s"))
	if err != nil {
		return nil, errors.New("invalid catalog timeout")
	}

	trendingInterval, err := time.ParseDuration(getEnv("TRENDING_RECALC_INTERVAL", "15m"))
	if err != nil {
		return nil, errors.New("invalid trending recalculation interval")
	}

	retentionDays, err := strconv.Atoi(getEnv("ACTIVITY_RETENTION_DAYS", "30"))
	if err != nil {
		return nil, errors.New("invalid activity retention days")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "ShopPulse Personalization API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "shoppulse"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Catalog: CatalogConfig{
			BaseURL: getEnv("CATALOG_BASE_URL", ""),
			APIKey:  getEnv("CATALOG_API_KEY", ""),
			Timeout: catalogTimeout,
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Scheduler: SchedulerConfig{
			Enabled:               getEnv("SCHEDULER_ENABLED", "true") == "true",
			TrendingInterval:      trendingInterval,
			ActivityRetentionDays: retentionDays,
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Catalog.BaseURL == "" {
		return nil, errors.New("missing catalog base url")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}
