package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"optionquotes-service/internal/application"
	"optionquotes-service/internal/config"
	httpserver "optionquotes-service/internal/infrastructure/http"
)

// API bundles what cmd/api needs to serve.
type API struct {
	Config  config.Config
	Handler http.Handler
}

// InitAPI builds the HTTP handler and every dependency behind it. The returned
// cleanup closes them in reverse order.
func InitAPI(ctx context.Context) (*API, func(), error) {
	cfg, err := ProvideConfig()
	if err != nil {
		return nil, func() {}, err
	}
	log := ProvideLogger()

	var cleanups cleanupStack
	db, closeDB, err := ProvideDB(ctx, log, cfg)
	if err != nil {
		return nil, func() {}, fmt.Errorf("init db: %w", err)
	}
	cleanups.push(closeDB)

	idem, closeIdem, err := ProvideIdempotency(cfg)
	if err != nil {
		cleanups.run()
		return nil, func() {}, fmt.Errorf("init idempotency: %w", err)
	}
	cleanups.push(closeIdem)

	m := ProvideMetrics("api")
	svc := ProvideQuoteService(db, m, log)
	srv := httpserver.NewServer(svc,
		httpserver.WithIdempotency(idem),
		httpserver.WithMetrics(m),
		httpserver.WithDefaultKeep(cfg.RetentionKeep),
		httpserver.WithRequestTimeout(cfg.RequestTimeout),
	)
	return &API{Config: cfg, Handler: httpserver.NewRouter(srv)}, cleanups.run, nil
}

// Collector bundles the collector worker with its metrics endpoint.
type Collector struct {
	Config  config.Config
	Worker  application.Worker
	Metrics http.Handler
}

// InitCollector builds the collector worker against the configured upstream.
func InitCollector(ctx context.Context) (*Collector, func(), error) {
	cfg, err := ProvideConfig()
	if err != nil {
		return nil, func() {}, err
	}
	log := ProvideLogger()

	fetcher, err := ProvideFetcher(cfg)
	if err != nil {
		return nil, func() {}, err
	}
	db, closeDB, err := ProvideDB(ctx, log, cfg)
	if err != nil {
		return nil, func() {}, fmt.Errorf("init db: %w", err)
	}
	m := ProvideMetrics("collector")
	svc := ProvideQuoteService(db, m, log)
	return &Collector{
		Config:  cfg,
		Worker:  ProvideCollector(cfg, svc, fetcher, ProvideTokens(cfg), log),
		Metrics: m.Handler(),
	}, closeDB, nil
}

// InitService builds a bare quote service for one-shot tools.
func InitService(ctx context.Context) (*application.QuoteService, func(), error) {
	cfg, err := ProvideConfig()
	if err != nil {
		return nil, func() {}, err
	}
	log := ProvideLogger()
	db, closeDB, err := ProvideDB(ctx, log, cfg)
	if err != nil {
		return nil, func() {}, fmt.Errorf("init db: %w", err)
	}
	return ProvideQuoteService(db, application.NoopMetrics{}, log), closeDB, nil
}

type cleanupStack []func()

func (c *cleanupStack) push(fn func()) { *c = append(*c, fn) }

func (c *cleanupStack) run() {
	for i := len(*c) - 1; i >= 0; i-- {
		(*c)[i]()
	}
	*c = nil
}
