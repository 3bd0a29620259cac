package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	rq := require.New(t)

	cfg, err := Load()
	rq.NoError(err)

	rq.Equal(StorageMemory, cfg.App.Storage)
	rq.Equal(10*time.Second, cfg.Oracle.CacheTTL)
	rq.Equal(5*time.Second, cfg.Oracle.FetchTimeout)
	rq.Equal("75000", cfg.Oracle.FallbackPrice.String())
	rq.Equal(10*time.Minute, cfg.HTTP.IdempotencyTTL)
	rq.False(cfg.Redis.Enabled())
	rq.False(cfg.Bot.Enabled())
	rq.False(cfg.Kafka.Enabled())
}

func TestLoadOptionalSections(t *testing.T) {
	rq := require.New(t)

	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("BOT_CHAT_ID", "-100500")
	t.Setenv("MEMORY_BUYERS", "7:5000,8:100")

	cfg, err := Load()
	rq.NoError(err)

	rq.Equal([]string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	rq.True(cfg.Redis.Enabled())
	rq.True(cfg.Bot.Enabled())
	rq.Equal([]string{"7:5000", "8:100"}, cfg.App.MemoryBuyers)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown storage", env: map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{name: "postgres without dsn", env: map[string]string{"STORAGE_DRIVER": "postgres"}},
		{name: "zero purchase limit", env: map[string]string{"REDIS_ADDRESS": "localhost:6379", "REDIS_PURCHASE_LIMIT": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
		})
	}
}
