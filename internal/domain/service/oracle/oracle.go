// Package oracle справочная цена металла с коротким кэшем и деградацией на запасную цену.
package oracle

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bullion_market/internal/metrics"
	"bullion_market/pkg/contextx"
	"bullion_market/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	DefaultCacheTTL     = 10 * time.Second
	DefaultFetchTimeout = 5 * time.Second
)

//nolint:gochecknoglobals
var (
	// TroyOuncesPerKilogram переводит котировку за унцию в цену за килограмм.
	TroyOuncesPerKilogram = decimal.RequireFromString("32.1507466")
	// DefaultFallbackPrice цена за кг, если котировки не было ни разу.
	DefaultFallbackPrice = decimal.NewFromInt(75000)
)

// Source откуда взята отданная цена.
type Source string

const (
	SourceLive     Source = "live"
	SourceCache    Source = "cache"
	SourceStale    Source = "stale"
	SourceFallback Source = "fallback"
)

// QuoteFetcher получает котировку за тройскую унцию у внешнего поставщика.
type QuoteFetcher interface {
	FetchOuncePrice(ctx context.Context) (decimal.Decimal, error)
}

// Snapshot результат запроса цены.
type Snapshot struct {
	PricePerKg decimal.Decimal
	FetchedAt  time.Time
	Source     Source
}

type Oracle struct {
	fetcher      QuoteFetcher
	ttl          time.Duration
	fetchTimeout time.Duration
	fallback     decimal.Decimal
	now          func() time.Time
	metrics      *metrics.Registry

	mu        sync.Mutex
	price     decimal.Decimal
	fetchedAt time.Time
}

func New(fetcher QuoteFetcher) *Oracle {
	return &Oracle{
		fetcher:      fetcher,
		ttl:          DefaultCacheTTL,
		fetchTimeout: DefaultFetchTimeout,
		fallback:     DefaultFallbackPrice,
		now:          time.Now,
	}
}

func (o *Oracle) WithCacheTTL(ttl time.Duration) *Oracle {
	o.ttl = ttl
	return o
}

func (o *Oracle) WithFetchTimeout(timeout time.Duration) *Oracle {
	o.fetchTimeout = timeout
	return o
}

func (o *Oracle) WithFallbackPrice(price decimal.Decimal) *Oracle {
	o.fallback = price
	return o
}

func (o *Oracle) WithClock(now func() time.Time) *Oracle {
	o.now = now
	return o
}

func (o *Oracle) WithMetrics(m *metrics.Registry) *Oracle {
	o.metrics = m
	return o
}

// ReferencePrice цена за килограмм. Никогда не возвращает ошибку.
func (o *Oracle) ReferencePrice(ctx context.Context) decimal.Decimal {
	return o.Snapshot(ctx).PricePerKg
}

// Snapshot цена вместе с источником и временем получения.
// Параллельные промахи кэша ждут один общий запрос к поставщику.
func (o *Oracle) Snapshot(ctx context.Context) Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()

	if !o.fetchedAt.IsZero() && now.Sub(o.fetchedAt) < o.ttl {
		return o.observe(Snapshot{PricePerKg: o.price, FetchedAt: o.fetchedAt, Source: SourceCache})
	}

	perKg, err := o.fetch(ctx)
	if err == nil {
		o.price = perKg
		o.fetchedAt = o.now()

		return o.observe(Snapshot{PricePerKg: o.price, FetchedAt: o.fetchedAt, Source: SourceLive})
	}

	if !o.fetchedAt.IsZero() {
		logger(ctx).Warn("quote fetch failed, using stale price",
			logx.Error(err),
			"price", o.price.String(),
			"fetched_at", o.fetchedAt,
		)

		return o.observe(Snapshot{PricePerKg: o.price, FetchedAt: o.fetchedAt, Source: SourceStale})
	}

	logger(ctx).Warn("quote fetch failed, using fallback price",
		logx.Error(err),
		"price", o.fallback.String(),
	)

	return o.observe(Snapshot{PricePerKg: o.fallback, Source: SourceFallback})
}

func (o *Oracle) fetch(ctx context.Context) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
	defer cancel()

	start := time.Now()
	perOunce, err := o.fetcher.FetchOuncePrice(ctx)
	o.metrics.ObserveOracleFetch(time.Since(start).Seconds())

	if err != nil {
		return decimal.Zero, err
	}

	if !perOunce.IsPositive() {
		return decimal.Zero, ErrNonPositiveQuote
	}

	return perOunce.Mul(TroyOuncesPerKilogram).Round(4), nil
}

func (o *Oracle) observe(s Snapshot) Snapshot {
	o.metrics.ObserveOracle(string(s.Source))
	return s
}
