package config

import (
	"time"

	"github.com/shopspring/decimal"
)

type Oracle struct {
	QuoteURL      string          `env:"ORACLE_QUOTE_URL" envDefault:"https://data-asg.goldprice.org/dbXRates/USD"`
	CacheTTL      time.Duration   `env:"ORACLE_CACHE_TTL" envDefault:"10s"`
	FetchTimeout  time.Duration   `env:"ORACLE_FETCH_TIMEOUT" envDefault:"5s"`
	FallbackPrice decimal.Decimal `env:"ORACLE_FALLBACK_PRICE" envDefault:"75000"`
}

type Syndication struct {
	BaseURL string        `env:"SYNDICATION_BASE_URL" envDefault:"http://localhost:8090"`
	Token   string        `env:"SYNDICATION_TOKEN" json:"-"`
	Timeout time.Duration `env:"SYNDICATION_TIMEOUT" envDefault:"10s"`
}

// Bot уведомления администраторам о новых записях ревью. Без токена отключены.
type Bot struct {
	Token  string `env:"BOT_TOKEN" json:"-"`
	ChatID int64  `env:"BOT_CHAT_ID"`
}

func (b Bot) Enabled() bool {
	return b.Token != "" && b.ChatID != 0
}

// Kafka события о расчётах. Без брокеров публикация отключена.
type Kafka struct {
	Brokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	Topic        string        `env:"KAFKA_SETTLED_TOPIC" envDefault:"purchase.settled"`
	WriteTimeout time.Duration `env:"KAFKA_WRITE_TIMEOUT" envDefault:"5s"`
}

func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0
}
