package worker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"optionquotes-service/internal/application"
	"optionquotes-service/internal/domain"
	"optionquotes-service/internal/infrastructure/logx"

	"go.uber.org/zap"
)

var _ application.Worker = (*CollectorWorker)(nil)

// QuoteWriter is the slice of the quote service the collector drives.
type QuoteWriter interface {
	Cleanup(ctx context.Context, req application.CleanupRequest) (domain.CleanupResult, error)
	Upsert(ctx context.Context, records []domain.QuoteRecord) (domain.UpsertSummary, error)
}

// CollectorWorker polls the upstream chain API and writes snapshots. For each
// symbol it clears stale rows first and waits for that to finish before upserting.
type CollectorWorker struct {
	Quotes  QuoteWriter
	Tokens  application.TokenProvider
	Fetcher application.QuoteFetcher

	Symbols           []string
	ExpirationDays    int
	KeepDuration      time.Duration
	CleanBeforeInsert bool
	PollEvery         time.Duration
	FetchTimeout      time.Duration

	// Kick triggers an immediate collection of one symbol.
	Kick <-chan string

	Log *zap.Logger
	Now func() time.Time
}

func (w *CollectorWorker) Start(ctx context.Context) {
	log := w.logger()
	if w.PollEvery <= 0 {
		w.PollEvery = 5 * time.Minute
	}

	t := time.NewTicker(w.PollEvery)
	defer t.Stop()

	log.Info("collector_started",
		zap.Duration("poll_every", w.PollEvery),
		zap.Strings("symbols", w.Symbols))
	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("collector_stopped")
			return
		case <-t.C:
			w.RunOnce(ctx)
		case sym, ok := <-w.Kick:
			if !ok {
				w.Kick = nil
				continue
			}
			w.collectWithToken(ctx, sym)
		}
	}
}

// RunOnce performs one collection pass over every configured symbol.
func (w *CollectorWorker) RunOnce(ctx context.Context) {
	log := w.logger()
	tok, err := w.Tokens.GetValidToken(ctx)
	if err != nil {
		log.Warn("collector.token_failed", zap.Error(err))
		return
	}
	for _, sym := range w.Symbols {
		if ctx.Err() != nil {
			return
		}
		w.collectSafe(ctx, tok, sym)
	}
}

func (w *CollectorWorker) collectWithToken(ctx context.Context, sym string) {
	tok, err := w.Tokens.GetValidToken(ctx)
	if err != nil {
		w.logger().Warn("collector.token_failed", zap.String("symbol", sym), zap.Error(err))
		return
	}
	w.collectSafe(ctx, tok, sym)
}

func (w *CollectorWorker) collectSafe(ctx context.Context, tok domain.Token, sym string) {
	log := w.logger().With(zap.String("symbol", sym))
	defer func() {
		if r := recover(); r != nil {
			log.Error("collector.panic", zap.String("panic", fmt.Sprint(r)))
		}
	}()
	if err := w.collect(ctx, tok, sym); err != nil {
		log.Warn("collector.symbol_failed", zap.Error(err))
	}
}

func (w *CollectorWorker) collect(ctx context.Context, tok domain.Token, sym string) error {
	log := w.logger().With(zap.String("symbol", sym))

	var batch []domain.QuoteRecord
	for _, exp := range upcomingExpirations(w.now(), w.ExpirationDays) {
		fctx, cancel := w.fetchCtx(ctx)
		recs, err := w.Fetcher.FetchQuoteRecords(fctx, tok, sym, exp)
		cancel()
		if err != nil {
			return fmt.Errorf("fetch %s: %w", exp.Format(domain.DateLayout), err)
		}
		batch = append(batch, recs...)
	}
	if len(batch) == 0 {
		log.Info("collector.no_records")
		return nil
	}

	if w.CleanBeforeInsert && w.KeepDuration > 0 {
		res, err := w.Quotes.Cleanup(ctx, application.CleanupRequest{
			Symbols:      underlyings(sym, batch),
			KeepDuration: w.KeepDuration,
		})
		if err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
		log.Info("collector.cleanup_done", zap.Int64("deleted", res.TotalDeleted))
	}

	sum, err := w.Quotes.Upsert(ctx, batch)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	log.Info("collector.upsert_done",
		zap.Int("processed", sum.TotalProcessed),
		zap.Int("inserted", sum.Inserted),
		zap.Int("updated", sum.Updated))
	return nil
}

func (w *CollectorWorker) fetchCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, w.FetchTimeout)
}

func (w *CollectorWorker) logger() *zap.Logger {
	if w.Log == nil {
		w.Log = logx.L().With(zap.String("worker", "collector"))
	}
	return w.Log
}

func (w *CollectorWorker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now().UTC()
}

// upcomingExpirations lists weekday dates from today through today+days-1.
// days <= 0 means today only.
func upcomingExpirations(now time.Time, days int) []time.Time {
	if days <= 0 {
		days = 1
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	var out []time.Time
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		out = append(out, day)
	}
	return out
}

func underlyings(sym string, recs []domain.QuoteRecord) []string {
	set := map[string]struct{}{sym: {}}
	for _, r := range recs {
		set[domain.UnderlyingFromOptionSymbol(r.OptionSymbol)] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
