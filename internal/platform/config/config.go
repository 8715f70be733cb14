package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	LogLevel    string

	// PostgresDSN empty selects the in-memory stores.
	PostgresDSN       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	TxMaxAttempts     int

	// RedisAddr empty disables the frozen ranking cache.
	RedisAddr       string
	RankingCacheTTL time.Duration

	JWTSecret string

	SweepInterval   time.Duration
	RelayInterval   time.Duration
	OutboxBatchSize int
	MetricsEnabled  bool
}

// Load reads an optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		ServiceName: envString("SERVICE_NAME", "inkwell"),
		HTTPPort:    envString("HTTP_PORT", "8080"),
		LogLevel:    envString("LOG_LEVEL", "info"),

		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		DBMaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		TxMaxAttempts:     envInt("TX_MAX_ATTEMPTS", 3),

		RedisAddr:       strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RankingCacheTTL: envDuration("RANKING_CACHE_TTL", 10*time.Minute),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SweepInterval:   envDuration("SWEEP_INTERVAL", time.Minute),
		RelayInterval:   envDuration("OUTBOX_RELAY_INTERVAL", 2*time.Second),
		OutboxBatchSize: envInt("OUTBOX_BATCH_SIZE", 100),
		MetricsEnabled:  envBool("METRICS_ENABLED", true),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.TxMaxAttempts < 1 {
		return errors.New("TX_MAX_ATTEMPTS must be at least 1")
	}
	if c.SweepInterval <= 0 || c.RelayInterval <= 0 {
		return errors.New("worker intervals must be positive")
	}
	return nil
}

func (c Config) UsesPostgres() bool {
	return c.PostgresDSN != ""
}

func envString(name string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
