// Package config builds process configuration from CULTIVA_* environment
// variables so main stays lean. Every value has a development default;
// production overrides all of them.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything main needs to wire the process.
type Config struct {
	Addr string

	// InitialAdmin seeds the admin role on first boot. Later transfers
	// live in the store; this value is ignored once state exists.
	InitialAdmin string

	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	// DatabaseURL selects the postgres store. Empty runs the in-memory
	// store, which is fine for development and tests only.
	DatabaseURL string

	Redis RedisConfig
	Kafka KafkaConfig

	// AuditBuffer is the capacity of the async mirror publisher inbox.
	AuditBuffer int

	ShutdownTimeout time.Duration
}

// RedisConfig configures the snapshot cache connection. An empty URL
// disables the cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit mirror producer. No brokers means the
// mirror stays on the in-process sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv reads the CULTIVA_* environment.
func FromEnv() Config {
	return Config{
		Addr:          getenv("CULTIVA_ADDR", ":8080"),
		InitialAdmin:  getenv("CULTIVA_ADMIN", "0x0000000000000000000000000000000000000001"),
		JWTSigningKey: getenv("CULTIVA_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     getenv("CULTIVA_JWT_ISSUER", "cultiva"),
		JWTAudience:   getenv("CULTIVA_JWT_AUDIENCE", "cultiva-registry"),
		DatabaseURL:   os.Getenv("CULTIVA_DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("CULTIVA_REDIS_URL"),
			PoolSize:     getenvInt("CULTIVA_REDIS_POOL_SIZE", 10),
			MinIdleConns: getenvInt("CULTIVA_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getenvDuration("CULTIVA_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getenvDuration("CULTIVA_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getenvDuration("CULTIVA_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("CULTIVA_KAFKA_BROKERS")),
			Topic:   getenv("CULTIVA_KAFKA_TOPIC", ""),
		},
		AuditBuffer:     getenvInt("CULTIVA_AUDIT_BUFFER", 256),
		ShutdownTimeout: getenvDuration("CULTIVA_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
