package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	App         App
	HTTP        HTTP
	Probe       Probe
	Metrics     Metrics
	Postgres    Postgres
	Redis       Redis
	Oracle      Oracle
	Syndication Syndication
	Bot         Bot
	Kafka       Kafka
}

type App struct {
	Name      string `env:"APP_NAME" envDefault:"bullion-market"`
	Version   string `env:"APP_VERSION" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	// Storage memory для локального запуска, postgres для окружений.
	Storage      string `env:"STORAGE_DRIVER" envDefault:"memory"`
	IngestAPIKey string `env:"INGEST_API_KEY" json:"-"`
	// MemoryBuyers кошельки для хранилища memory в формате id:balance.
	MemoryBuyers []string `env:"MEMORY_BUYERS" envSeparator:","`
}

type HTTP struct {
	ListenAddress   string        `env:"HTTP_LISTEN_ADDRESS" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	LogFieldMaxLen  int           `env:"HTTP_LOG_FIELD_MAX_LEN" envDefault:"4096"`
	IdempotencyTTL  time.Duration `env:"HTTP_IDEMPOTENCY_TTL" envDefault:"10m"`
}

type Probe struct {
	ListenAddress string `env:"PROBE_LISTEN_ADDRESS" envDefault:":8081"`
}

type Metrics struct {
	ListenAddress string `env:"METRICS_LISTEN_ADDRESS" envDefault:":9090"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := config.validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c Config) validate() error {
	switch c.App.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("PG_DSN is required for storage driver %q", c.App.Storage)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.App.Storage)
	}

	if c.Redis.Enabled() && c.Redis.PurchaseLimit <= 0 {
		return fmt.Errorf("REDIS_PURCHASE_LIMIT must be positive, got %d", c.Redis.PurchaseLimit)
	}

	return nil
}
