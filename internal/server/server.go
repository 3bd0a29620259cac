package server

import "time"

const defaultIdempotencyTTL = 10 * time.Minute

// Server объединяет HTTP серверы по сущностям и общие для маршрутов middleware.
type Server struct {
	DealServer
	PurchaseServer
	ExportServer

	ingestAPIKey string
	limiter      *RateLimiter
	replay       *replayCache
}

type Option func(*Server)

// WithIngestAPIKey ключ сервисного приёма лотов.
func WithIngestAPIKey(key string) Option {
	return func(s *Server) {
		s.ingestAPIKey = key
	}
}

// WithRateLimiter ограничение частоты покупок. Без него покупки не ограничиваются.
func WithRateLimiter(l *RateLimiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

func WithIdempotencyTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.replay = newReplayCache(ttl)
	}
}

func NewServer(
	dealServer DealServer,
	purchaseServer PurchaseServer,
	exportServer ExportServer,
	opts ...Option,
) Server {
	s := Server{
		DealServer:     dealServer,
		PurchaseServer: purchaseServer,
		ExportServer:   exportServer,
		replay:         newReplayCache(defaultIdempotencyTTL),
	}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}
