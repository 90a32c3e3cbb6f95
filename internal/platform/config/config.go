package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Backend names accepted by RAFFLE_STORE and RAFFLE_LEDGER.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Server captures process-level configuration.
type Server struct {
	Addr     string `env:"RAFFLE_ADDR" envDefault:":8080"`
	LogLevel string `env:"RAFFLE_LOG_LEVEL" envDefault:"info"`

	// Store selects raffle persistence: memory or postgres.
	Store       string `env:"RAFFLE_STORE" envDefault:"memory"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Ledger selects the ledger substrate: memory or redis.
	Ledger         string `env:"RAFFLE_LEDGER" envDefault:"memory"`
	MinimumBalance uint64 `env:"RAFFLE_MINIMUM_BALANCE" envDefault:"0"`

	Redis  RedisConfig
	Kafka  KafkaConfig
	Signer SignatureConfig
	Limits RateLimitConfig

	AuditBuffer     int           `env:"RAFFLE_AUDIT_BUFFER" envDefault:"1024"`
	TxTimeout       time.Duration `env:"RAFFLE_TX_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout time.Duration `env:"RAFFLE_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// RedisConfig configures the Redis client backing the ledger and replay guard.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig configures WinnerSelected publishing. Empty Brokers keeps
// notifications in process.
type KafkaConfig struct {
	Brokers           []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic             string   `env:"RAFFLE_EVENTS_TOPIC" envDefault:"raffle.winner-selected"`
	Partitions        int32    `env:"RAFFLE_EVENTS_PARTITIONS" envDefault:"3"`
	ReplicationFactor int16    `env:"RAFFLE_EVENTS_REPLICATION" envDefault:"1"`
}

// SignatureConfig bounds signed-request freshness.
type SignatureConfig struct {
	MaxSkew time.Duration `env:"RAFFLE_SIGNATURE_MAX_SKEW" envDefault:"5m"`
}

// RateLimitConfig bounds mutating requests per caller. A zero Limit disables it.
type RateLimitConfig struct {
	Limit  int           `env:"RAFFLE_RATE_LIMIT" envDefault:"60"`
	Window time.Duration `env:"RAFFLE_RATE_WINDOW" envDefault:"1m"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks backend selections against the settings they require.
func (c *Server) Validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	c.Ledger = strings.ToLower(strings.TrimSpace(c.Ledger))

	switch c.Store {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when RAFFLE_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown RAFFLE_STORE %q", c.Store)
	}

	switch c.Ledger {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required when RAFFLE_LEDGER=redis")
		}
	default:
		return fmt.Errorf("unknown RAFFLE_LEDGER %q", c.Ledger)
	}

	if c.Limits.Limit > 0 && c.Limits.Window <= 0 {
		return fmt.Errorf("RAFFLE_RATE_WINDOW must be positive when rate limiting is enabled")
	}
	if c.Signer.MaxSkew <= 0 {
		return fmt.Errorf("RAFFLE_SIGNATURE_MAX_SKEW must be positive")
	}
	return nil
}
