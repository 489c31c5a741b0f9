package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	AuthModeVerified = "verified"
	AuthModeEmail    = "email"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port        string `validate:"required,numeric"`
	DBDriver    string `validate:"oneof=postgres sqlite"`
	DatabaseURL string `validate:"required"`
	LogLevel    string
	GinMode     string `validate:"omitempty,oneof=debug release test"`

	AuthMode      string `validate:"oneof=verified email"`
	JWTSecret     string
	SessionSecret string

	CORSOrigins []string

	ListCacheTTL  time.Duration `validate:"gte=0"`
	ListCacheSize int           `validate:"gt=0"`
	RedisURL      string        `validate:"omitempty,url"`
	NATSURL       string

	RateLimitRPS   float64 `validate:"gt=0"`
	RateLimitBurst int     `validate:"gt=0"`

	SeedDemo bool
}

var validate = validator.New()

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	driver := getEnv("DB_DRIVER", DriverPostgres)
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBDriver:       driver,
		DatabaseURL:    getEnv("DATABASE_URL", defaultDSN(driver)),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		GinMode:        os.Getenv("GIN_MODE"),
		AuthMode:       getEnv("AUTH_MODE", AuthModeVerified),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		CORSOrigins:    getEnvAsList("CORS_ORIGINS"),
		ListCacheTTL:   getEnvAsDuration("LIST_CACHE_TTL", 30*time.Second),
		ListCacheSize:  getEnvAsInt("LIST_CACHE_SIZE", 500),
		RedisURL:       os.Getenv("REDIS_URL"),
		NATSURL:        os.Getenv("NATS_URL"),
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 10),
		SeedDemo:       getEnvAsBool("SEED_DEMO", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the auth mode requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.AuthMode == AuthModeVerified && c.JWTSecret == "" && c.SessionSecret == "" {
		return fmt.Errorf("invalid config: AUTH_MODE=verified requires JWT_SECRET or SESSION_SECRET")
	}
	return nil
}

func defaultDSN(driver string) string {
	if driver == DriverSQLite {
		return "file:socialshop.db"
	}
	// Fallback for local dev if not set
	return "host=localhost user=postgres password=postgres dbname=socialshop port=5432 sslmode=disable"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultVal
	}
	if raw == "0" {
		return 0
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
