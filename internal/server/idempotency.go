package server

import (
	"bytes"
	"cmp"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/zenazn/goji/web/mutil"

	"bullion_market/internal/domain"
	"bullion_market/pkg/contextx"
	"bullion_market/pkg/errcodes"
	"bullion_market/pkg/logx"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 128
)

type storedResponse struct {
	status int
	header http.Header
	body   []byte
	done   bool
}

// replayCache хранит первый ответ на запрос с Idempotency-Key.
// Ответы 5xx не сохраняются, такой запрос можно повторить.
type replayCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

func newReplayCache(ttl time.Duration) *replayCache {
	return &replayCache{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (c *replayCache) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		key := r.Header.Get(headerIdempotencyKey)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		if len(key) > maxIdempotencyKeyLen {
			writeError(ctx, w, domain.NewError(domain.KindInvalidInput, errcodes.ValidationError,
				"idempotency key is too long"))
			return
		}

		userID, _ := contextx.UserIDFromContext(ctx) //nolint:errcheck
		cacheKey := fmt.Sprintf("%d:%s %s:%s", userID, r.Method, r.URL.Path, key)

		// Add атомарен: второй запрос с тем же ключом либо повторит ответ, либо получит конфликт.
		if err := c.cache.Add(cacheKey, &storedResponse{}, c.ttl); err != nil {
			c.replay(w, r, cacheKey)
			return
		}

		defer func() {
			if rec := recover(); rec != nil {
				c.cache.Delete(cacheKey)
				panic(rec)
			}
		}()

		lw := mutil.WrapWriter(w)

		var buf bytes.Buffer

		lw.Tee(&buf)

		next.ServeHTTP(lw, r)

		status := cmp.Or(lw.Status(), http.StatusOK)
		if status >= http.StatusInternalServerError {
			c.cache.Delete(cacheKey)
			return
		}

		c.cache.Set(cacheKey, &storedResponse{
			status: status,
			header: w.Header().Clone(),
			body:   buf.Bytes(),
			done:   true,
		}, c.ttl)
	})
}

func (c *replayCache) replay(w http.ResponseWriter, r *http.Request, key string) {
	ctx := r.Context()

	item, ok := c.cache.Get(key)
	stored, _ := item.(*storedResponse) //nolint:errcheck

	if !ok || stored == nil || !stored.done {
		writeError(ctx, w, domain.NewError(domain.KindConflict, errcodes.AlreadyProcessed,
			"request with this idempotency key is in progress"))
		return
	}

	for name, values := range stored.header {
		w.Header()[name] = values
	}

	w.Header().Set(headerReplayed, "true")
	w.WriteHeader(stored.status)

	if _, err := w.Write(stored.body); err != nil {
		logger(ctx).Error("w.Write", logx.Error(err))
	}
}
