package oracle_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bullion_market/internal/domain/service/oracle"
)

type fetcherMock struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context) (decimal.Decimal, error)
}

func (f *fetcherMock) FetchOuncePrice(ctx context.Context) (decimal.Decimal, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	return f.fn(ctx)
}

func (f *fetcherMock) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var errUpstream = errors.New("upstream down")

func TestOracleConvertsOuncePrice(t *testing.T) {
	rq := require.New(t)

	fetcher := &fetcherMock{fn: func(context.Context) (decimal.Decimal, error) {
		return decimal.NewFromInt(2000), nil
	}}
	clk := &clock{now: time.Unix(1_700_000_000, 0)}

	o := oracle.New(fetcher).WithClock(clk.Now)

	snap := o.Snapshot(context.Background())
	rq.Equal(oracle.SourceLive, snap.Source)
	rq.True(decimal.RequireFromString("64301.4932").Equal(snap.PricePerKg), "got %s", snap.PricePerKg)
	rq.Equal(clk.now, snap.FetchedAt)
}

func TestOracleCacheTTL(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	price := decimal.NewFromInt(1)
	fetcher := &fetcherMock{fn: func(context.Context) (decimal.Decimal, error) {
		return price, nil
	}}
	clk := &clock{now: time.Unix(1_700_000_000, 0)}

	o := oracle.New(fetcher).WithClock(clk.Now).WithCacheTTL(10 * time.Second)

	first := o.ReferencePrice(ctx)
	rq.Equal(1, fetcher.Calls())

	clk.Advance(9 * time.Second)
	price = decimal.NewFromInt(2)

	rq.True(first.Equal(o.ReferencePrice(ctx)))
	rq.Equal(oracle.SourceCache, o.Snapshot(ctx).Source)
	rq.Equal(1, fetcher.Calls())

	clk.Advance(2 * time.Second)

	refreshed := o.ReferencePrice(ctx)
	rq.Equal(2, fetcher.Calls())
	rq.True(refreshed.Equal(oracle.TroyOuncesPerKilogram.Mul(decimal.NewFromInt(2)).Round(4)))
}

func TestOracleFallbackWithoutCache(t *testing.T) {
	rq := require.New(t)

	fetcher := &fetcherMock{fn: func(context.Context) (decimal.Decimal, error) {
		return decimal.Zero, errUpstream
	}}

	o := oracle.New(fetcher).WithFallbackPrice(decimal.NewFromInt(61000))

	snap := o.Snapshot(context.Background())
	rq.Equal(oracle.SourceFallback, snap.Source)
	rq.True(decimal.NewFromInt(61000).Equal(snap.PricePerKg))
	rq.True(snap.FetchedAt.IsZero())

	rq.True(oracle.DefaultFallbackPrice.Equal(oracle.New(fetcher).ReferencePrice(context.Background())))
}

func TestOracleStaleOnFailure(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	fail := false
	fetcher := &fetcherMock{fn: func(context.Context) (decimal.Decimal, error) {
		if fail {
			return decimal.Zero, errUpstream
		}
		return decimal.NewFromInt(2000), nil
	}}
	clk := &clock{now: time.Unix(1_700_000_000, 0)}

	o := oracle.New(fetcher).WithClock(clk.Now)
	live := o.Snapshot(ctx)

	fail = true
	clk.Advance(time.Hour)

	stale := o.Snapshot(ctx)
	rq.Equal(oracle.SourceStale, stale.Source)
	rq.True(live.PricePerKg.Equal(stale.PricePerKg))
	rq.Equal(live.FetchedAt, stale.FetchedAt)

	// неудачный запрос не обновляет кэш, каждое обращение снова идёт к поставщику
	o.Snapshot(ctx)
	rq.Equal(3, fetcher.Calls())
}

func TestOracleRejectsNonPositiveQuote(t *testing.T) {
	rq := require.New(t)

	fetcher := &fetcherMock{fn: func(context.Context) (decimal.Decimal, error) {
		return decimal.NewFromInt(-5), nil
	}}

	snap := oracle.New(fetcher).Snapshot(context.Background())
	rq.Equal(oracle.SourceFallback, snap.Source)
}

func TestOracleFetchTimeout(t *testing.T) {
	rq := require.New(t)

	fetcher := &fetcherMock{fn: func(ctx context.Context) (decimal.Decimal, error) {
		<-ctx.Done()
		return decimal.Zero, ctx.Err()
	}}

	o := oracle.New(fetcher).WithFetchTimeout(20 * time.Millisecond)

	start := time.Now()
	snap := o.Snapshot(context.Background())

	rq.Equal(oracle.SourceFallback, snap.Source)
	rq.Less(time.Since(start), time.Second)
}

func TestOracleConcurrentReads(t *testing.T) {
	rq := require.New(t)

	fetcher := &fetcherMock{fn: func(context.Context) (decimal.Decimal, error) {
		return decimal.NewFromInt(2000), nil
	}}
	o := oracle.New(fetcher)

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.ReferencePrice(context.Background())
		}()
	}
	wg.Wait()

	rq.Equal(1, fetcher.Calls())
}
