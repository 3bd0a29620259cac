package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"bullion_market/internal/config"
	"bullion_market/internal/domain/service/deal"
	"bullion_market/internal/domain/service/export"
	"bullion_market/internal/domain/service/logistics"
	"bullion_market/internal/domain/service/oracle"
	"bullion_market/internal/domain/service/settlement"
	"bullion_market/internal/infrastructure/events"
	"bullion_market/internal/infrastructure/notifier"
	"bullion_market/internal/infrastructure/quote"
	"bullion_market/internal/infrastructure/syndication"
	"bullion_market/internal/metrics"
	"bullion_market/internal/server"
	"bullion_market/pkg/application/connectors"
	"bullion_market/pkg/application/modules"
	"bullion_market/pkg/contextx"
	"bullion_market/pkg/httpx"
	"bullion_market/pkg/logx"
	"bullion_market/pkg/middlewarex"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Run собирает зависимости и держит серверы до отмены ctx.
func Run(ctx context.Context, cfg config.Config) error {
	registry := metrics.NewRegistry(prometheus.DefaultRegisterer)

	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("openStorage: %w", err)
	}
	defer closeStorage()

	masker := logx.NewSensitiveDataMasker()
	clientOpts := []httpx.Option{
		httpx.WithSensitiveDataMasker(masker),
		httpx.WithLogFieldMaxLen(cfg.HTTP.LogFieldMaxLen),
	}

	quoteClient := quote.NewClient(cfg.Oracle.QuoteURL, cfg.Oracle.FetchTimeout, clientOpts...)
	syndicationClient := syndication.NewClient(
		cfg.Syndication.BaseURL,
		cfg.Syndication.Token,
		cfg.Syndication.Timeout,
		clientOpts...,
	)

	priceOracle := oracle.New(quoteClient).
		WithCacheTTL(cfg.Oracle.CacheTTL).
		WithFetchTimeout(cfg.Oracle.FetchTimeout).
		WithFallbackPrice(cfg.Oracle.FallbackPrice).
		WithMetrics(registry)

	exportService := export.NewService(storage.exports, syndicationClient).
		WithMetrics(registry)

	if cfg.Bot.Enabled() {
		bot, err := notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.ChatID)
		if err != nil {
			return fmt.Errorf("notifier.NewTelegramBot: %w", err)
		}

		exportService.WithNotifier(bot)
	}

	settlementService := settlement.NewService(
		storage.deals,
		storage.tx,
		priceOracle,
		exportService,
		storage.agreements,
	).WithMetrics(registry)

	if cfg.Kafka.Enabled() {
		producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.WriteTimeout)
		defer func() {
			if err := producer.Close(); err != nil {
				logger(ctx).Error("producer.Close", logx.Error(err))
			}
		}()

		settlementService.WithEventPublisher(producer)
	}

	logisticsService := logistics.NewService(
		storage.purchases,
		storage.deals,
		storage.exports,
		exportService,
		syndicationClient,
	).WithMetrics(registry)

	opts := []server.Option{
		server.WithIngestAPIKey(cfg.App.IngestAPIKey),
		server.WithIdempotencyTTL(cfg.HTTP.IdempotencyTTL),
	}

	if cfg.Redis.Enabled() {
		rdb := &connectors.Redis{
			Username:           cfg.Redis.Username,
			Password:           cfg.Redis.Password,
			Address:            cfg.Redis.Address,
			DatabaseNumber:     cfg.Redis.DatabaseNumber,
			PoolSize:           cfg.Redis.PoolSize,
			MinIdleConnections: cfg.Redis.MinIdleConnections,
			MaxIdleConnections: cfg.Redis.MaxIdleConnections,
		}
		client := rdb.Client(ctx)
		defer rdb.Close(ctx)

		opts = append(opts, server.WithRateLimiter(
			server.NewRateLimiter(client, cfg.Redis.PurchaseLimit, cfg.Redis.PurchaseWindow),
		))
	}

	srv := server.NewServer(
		server.NewDealServer(deal.NewService(storage.deals, priceOracle)),
		server.NewPurchaseServer(settlementService, logisticsService),
		server.NewExportServer(exportService),
		opts...,
	)

	router := chi.NewRouter()
	router.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.RequestLogging(masker, cfg.HTTP.LogFieldMaxLen),
		middlewarex.ResponseLogging(masker, cfg.HTTP.LogFieldMaxLen),
		middlewarex.Recovery,
	)
	srv.RegisterRoutes(router)

	httpServer := &http.Server{
		//nolint:exhaustruct
		Addr:              cfg.HTTP.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(ctx, g, httpServer)
	modules.MetricServer{ListenAddress: cfg.Metrics.ListenAddress}.Run(ctx, g)
	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.Probe.ListenAddress,
	}.Run(ctx, g)

	logger(ctx).Info("application started",
		slog.String(logx.FieldAppName, cfg.App.Name),
		slog.String(logx.FieldAppVersion, cfg.App.Version),
		slog.String("storage", cfg.App.Storage),
	)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}
