package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, BackendMemory, cfg.Store)
	assert.Equal(t, BackendMemory, cfg.Ledger)
	assert.Equal(t, 5*time.Minute, cfg.Signer.MaxSkew)
	assert.Equal(t, "raffle.winner-selected", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 60, cfg.Limits.Limit)
	assert.Equal(t, time.Minute, cfg.Limits.Window)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("RAFFLE_STORE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://raffle@localhost/raffle")
	t.Setenv("RAFFLE_LEDGER", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RAFFLE_SIGNATURE_MAX_SKEW", "90s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.Store)
	assert.Equal(t, BackendRedis, cfg.Ledger)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 90*time.Second, cfg.Signer.MaxSkew)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"RAFFLE_STORE": "postgres"}},
		{"redis without url", map[string]string{"RAFFLE_LEDGER": "redis"}},
		{"unknown store", map[string]string{"RAFFLE_STORE": "sqlite"}},
		{"zero skew", map[string]string{"RAFFLE_SIGNATURE_MAX_SKEW": "0s"}},
		{"zero rate window", map[string]string{"RAFFLE_RATE_WINDOW": "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
		})
	}
}
