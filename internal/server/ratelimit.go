package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"

	"bullion_market/internal/domain"
	"bullion_market/pkg/contextx"
	"bullion_market/pkg/errcodes"
	"bullion_market/pkg/logx"
)

// KEYS[1] ключ окна, ARGV: now ms, начало окна ms, окно в секундах, member, лимит.
// Возвращает число запросов в окне или -1, если лимит исчерпан.
const luaSlidingWindow = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowStart = tonumber(ARGV[2])
local windowSec = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '0', windowStart)

local count = redis.call('ZCARD', key)

if count < tonumber(ARGV[5]) then
  redis.call('ZADD', key, now, member)
  redis.call('EXPIRE', key, windowSec)
  return count + 1
end

return -1
`

type evaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// RateLimiter ограничивает частоту покупок одного покупателя скользящим окном в Redis.
type RateLimiter struct {
	rdb    evaler
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(rdb evaler, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow при ошибке Redis пропускает запрос.
func (l *RateLimiter) Allow(ctx context.Context, userID contextx.UserID) bool {
	now := l.now()
	windowSec := max(int64(l.window/time.Second), 1)

	res, err := l.rdb.Eval(ctx, luaSlidingWindow,
		[]string{fmt.Sprintf("rate_limit:purchase:user:%d", userID)},
		now.UnixMilli(),
		now.Add(-l.window).UnixMilli(),
		windowSec,
		xid.NewWithTime(now).String(),
		l.limit,
	).Int()
	if err != nil {
		logger(ctx).Warn("rate limiter unavailable", logx.Error(err))
		return true
	}

	return res >= 0
}

func (l *RateLimiter) middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := contextx.UserIDFromContext(ctx)
		if err == nil && !l.Allow(ctx, userID) {
			writeError(ctx, w, domain.NewError(domain.KindRateLimited, errcodes.RateLimited,
				"too many purchase requests"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
