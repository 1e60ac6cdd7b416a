package config

import (
	"os"
	"strconv"
	"time"
)

// StoreBackend selects which persistence layer backs the stores.
type StoreBackend string

const (
	BackendMemory   StoreBackend = "memory"
	BackendPostgres StoreBackend = "postgres"
	BackendBolt     StoreBackend = "bolt"
)

// Server captures process-level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration

	// Store selection. The reference registry may additionally be pinned to
	// Redis regardless of the record store backend.
	StoreBackend StoreBackend
	PostgresURL  string
	BoltPath     string
	Redis        RedisConfig

	// UseRedisRegistry routes reference uniqueness through Redis even when
	// records live elsewhere.
	UseRedisRegistry bool
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CERTPAY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	backend := StoreBackend(os.Getenv("CERTPAY_STORE"))
	switch backend {
	case BackendMemory, BackendPostgres, BackendBolt:
	default:
		backend = BackendMemory
	}

	boltPath := os.Getenv("CERTPAY_BOLT_PATH")
	if boltPath == "" {
		boltPath = "certpay.db"
	}

	return Server{
		Addr:            addr,
		ShutdownTimeout: envDuration("CERTPAY_SHUTDOWN_TIMEOUT", 10*time.Second),
		StoreBackend:    backend,
		PostgresURL:     os.Getenv("CERTPAY_POSTGRES_URL"),
		BoltPath:        boltPath,
		Redis: RedisConfig{
			URL:          os.Getenv("CERTPAY_REDIS_URL"),
			PoolSize:     envInt("CERTPAY_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("CERTPAY_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("CERTPAY_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("CERTPAY_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("CERTPAY_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		UseRedisRegistry: os.Getenv("CERTPAY_REDIS_REGISTRY") == "true",
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
