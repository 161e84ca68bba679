package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"optionquotes-service/internal/bootstrap"
	infraconfig "optionquotes-service/internal/infrastructure/config"
	"optionquotes-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, cleanup, err := bootstrap.InitCollector(ctx)
	if err != nil {
		log.Fatal("init collector", zap.Error(err))
	}
	defer cleanup()

	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Metrics)
	metricsSrv := &http.Server{Addr: ":" + c.Config.Port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server", zap.Error(err))
		}
	}()

	c.Worker.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
}
