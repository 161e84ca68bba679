package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"optionquotes-service/internal/application"
	"optionquotes-service/internal/config"
	"optionquotes-service/internal/infrastructure/httpx"
	"optionquotes-service/internal/infrastructure/logx"
	"optionquotes-service/internal/infrastructure/metrics"
	"optionquotes-service/internal/infrastructure/pg"
	"optionquotes-service/internal/infrastructure/provider"
	redisstore "optionquotes-service/internal/infrastructure/redis"
	"optionquotes-service/internal/infrastructure/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required")

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() (config.Config, error) { return config.FromEnvironment() }

func PoolOptions(cfg config.Config) pg.PoolOptions {
	return pg.PoolOptions{
		MaxConns:        int32(cfg.PGMaxConns),
		MinConns:        int32(cfg.PGMinConns),
		MaxConnIdleTime: cfg.PGMaxConnIdle,
		ConnectTimeout:  cfg.PGConnectTimeout,
		AcquireTimeout:  cfg.PGAcquireTimeout,
		QueryTimeout:    cfg.PGQueryTimeout,
	}
}

// ProvideDB opens the pool and applies pending migrations.
func ProvideDB(ctx context.Context, log *zap.Logger, cfg config.Config) (*pg.DB, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, ErrMissingDBURL
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL, PoolOptions(cfg))
	if err != nil {
		return nil, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return db, cleanup, nil
}

func ProvideQuoteService(db *pg.DB, m application.Metrics, log *zap.Logger) *application.QuoteService {
	return application.NewQuoteService(
		pg.NewQuoteRepo(db),
		pg.NewUnitOfWork(db),
		application.WithMetrics(m),
		application.WithLogger(log.With(zap.String("component", "quote_service"))),
	)
}

// ProvideIdempotency returns a Redis-backed store, or a no-op one when the backend is "none".
func ProvideIdempotency(cfg config.Config) (application.IdempotencyStore, func(), error) {
	if cfg.IdempotencyBackend != "redis" {
		return application.NoopIdempotency{}, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return redisstore.New(client, cfg.IdempotencyTTL), func() { _ = client.Close() }, nil
}

func ProvideMetrics(service string) *metrics.Registry { return metrics.New(service) }

func ProvideFetcher(cfg config.Config) (application.QuoteFetcher, error) {
	switch cfg.Provider {
	case "http":
		return &provider.ChainFetcher{
			BaseURL: cfg.QuotesAPIBase,
			Client: &httpx.Client{
				HTTP:       &http.Client{Timeout: 10 * time.Second},
				MaxElapsed: 5 * time.Second,
			},
		}, nil
	case "fake":
		return provider.NewFake(5000, 10), nil
	default:
		return nil, fmt.Errorf("unknown PROVIDER=%q", cfg.Provider)
	}
}

func ProvideTokens(cfg config.Config) application.TokenProvider {
	token := cfg.QuotesAPIToken
	if cfg.Provider == "fake" && token == "" {
		token = "local"
	}
	return provider.StaticTokenProvider{Token: token}
}

func ProvideCollector(cfg config.Config, svc *application.QuoteService, fetcher application.QuoteFetcher, tokens application.TokenProvider, log *zap.Logger) *worker.CollectorWorker {
	return &worker.CollectorWorker{
		Quotes:            svc,
		Tokens:            tokens,
		Fetcher:           fetcher,
		Symbols:           cfg.CollectSymbols,
		ExpirationDays:    cfg.CollectExpirationDays,
		KeepDuration:      cfg.RetentionKeep,
		CleanBeforeInsert: cfg.CleanBeforeInsert,
		PollEvery:         cfg.CollectPoll,
		FetchTimeout:      cfg.RequestTimeout,
		Log:               log.With(zap.String("worker", "collector")),
	}
}
