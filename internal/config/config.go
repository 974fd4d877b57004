package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig aggregates runtime configuration, injected via environment
// variables with sensible defaults.
type AppConfig struct {
	HTTPAddr string

	MySQLDSN  string
	RedisAddr string
	RedisDB   int

	KafkaBrokers  []string
	OrderTopic    string
	LowStockTopic string

	LockTTL        time.Duration
	LockRetries    int
	LockRetryDelay time.Duration

	LowStockLimit int

	WarmInterval time.Duration

	SubmitRateLimit  int
	SubmitRateWindow time.Duration
}

// LowStockThreshold satisfies port.Settings.
func (c AppConfig) LowStockThreshold() int { return c.LowStockLimit }

// Load reads and validates configuration, falling back to defaults.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		MySQLDSN:         getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/mall?parseTime=true"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:     splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
		OrderTopic:       getEnv("ORDER_TOPIC", "mall-order-created"),
		LowStockTopic:    getEnv("LOW_STOCK_TOPIC", "mall-low-stock"),
		LockTTL:          3000 * time.Millisecond,
		LockRetries:      5,
		LockRetryDelay:   50 * time.Millisecond,
		LowStockLimit:    10,
		WarmInterval:     5 * time.Minute,
		SubmitRateLimit:  1000,
		SubmitRateWindow: time.Second,
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	lockTTLMs, err := getEnvInt("LOCK_TTL_MS", int(cfg.LockTTL.Milliseconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid LOCK_TTL_MS: %w", err)
	}
	if lockTTLMs <= 0 {
		return AppConfig{}, fmt.Errorf("LOCK_TTL_MS must be > 0")
	}
	cfg.LockTTL = time.Duration(lockTTLMs) * time.Millisecond

	retries, err := getEnvInt("LOCK_RETRIES", cfg.LockRetries)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid LOCK_RETRIES: %w", err)
	}
	if retries <= 0 {
		return AppConfig{}, fmt.Errorf("LOCK_RETRIES must be > 0")
	}
	cfg.LockRetries = retries

	delayMs, err := getEnvInt("LOCK_RETRY_DELAY_MS", int(cfg.LockRetryDelay.Milliseconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid LOCK_RETRY_DELAY_MS: %w", err)
	}
	if delayMs <= 0 {
		return AppConfig{}, fmt.Errorf("LOCK_RETRY_DELAY_MS must be > 0")
	}
	cfg.LockRetryDelay = time.Duration(delayMs) * time.Millisecond

	threshold, err := getEnvInt("LOW_STOCK_THRESHOLD", cfg.LowStockLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid LOW_STOCK_THRESHOLD: %w", err)
	}
	cfg.LowStockLimit = threshold

	warmMin, err := getEnvInt("WARM_INTERVAL_MIN", int(cfg.WarmInterval.Minutes()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid WARM_INTERVAL_MIN: %w", err)
	}
	if warmMin <= 0 {
		return AppConfig{}, fmt.Errorf("WARM_INTERVAL_MIN must be > 0")
	}
	cfg.WarmInterval = time.Duration(warmMin) * time.Minute

	rateLimit, err := getEnvInt("SUBMIT_RATE_LIMIT", cfg.SubmitRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid SUBMIT_RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("SUBMIT_RATE_LIMIT must be > 0")
	}
	cfg.SubmitRateLimit = rateLimit

	if len(cfg.KafkaBrokers) == 0 {
		return AppConfig{}, fmt.Errorf("KAFKA_BROKERS must not be empty")
	}
	if cfg.OrderTopic == "" {
		return AppConfig{}, fmt.Errorf("ORDER_TOPIC must not be empty")
	}
	if cfg.LowStockTopic == "" {
		return AppConfig{}, fmt.Errorf("LOW_STOCK_TOPIC must not be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
