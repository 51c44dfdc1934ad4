package config

import (
	"os"
	"strings"
	"time"
)

// Config captures process-level configuration. Runtime policy (thresholds,
// approved jurisdictions) is managed through the admin API, not here.
type Config struct {
	Addr            string
	AdminToken      string
	JWTSigningKey   string
	LogLevel        string
	ShutdownTimeout time.Duration

	PostgresURL string
	Redis       RedisConfig
	Kafka       KafkaConfig
}

// RedisConfig controls the optional Redis-backed volume ledger.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig controls the audit outbox relay. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// FromEnv builds a Config from environment variables so main stays lean.
// Defaults are development placeholders and must be overridden in production.
func FromEnv() Config {
	cfg := Config{
		Addr:            getenv("NILCLEAR_ADDR", ":8080"),
		AdminToken:      getenv("NILCLEAR_ADMIN_TOKEN", "dev-admin-token-change-in-production"),
		JWTSigningKey:   getenv("NILCLEAR_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		LogLevel:        getenv("NILCLEAR_LOG_LEVEL", "info"),
		ShutdownTimeout: 10 * time.Second,
		PostgresURL:     os.Getenv("NILCLEAR_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("NILCLEAR_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			AuditTopic: getenv("NILCLEAR_KAFKA_AUDIT_TOPIC", "nilclear.audit"),
		},
	}
	if brokers := os.Getenv("NILCLEAR_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
