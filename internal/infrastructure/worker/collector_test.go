package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"optionquotes-service/internal/application"
	"optionquotes-service/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticTokens struct {
	err error
}

func (s staticTokens) GetValidToken(context.Context) (domain.Token, error) {
	if s.err != nil {
		return domain.Token{}, s.err
	}
	return domain.Token{Value: "t"}, nil
}

type stubFetcher struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
	panic bool
}

func (f *stubFetcher) FetchQuoteRecords(_ context.Context, _ domain.Token, symbol string, exp time.Time) ([]domain.QuoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panic {
		panic("boom")
	}
	f.calls = append(f.calls, exp)
	if f.err != nil {
		return nil, f.err
	}
	return []domain.QuoteRecord{{
		OptionSymbol:   symbol + "W " + exp.Format("060102") + "C05000000",
		ExpirationDate: exp,
		ExpirationType: domain.ExpirationWeekly,
		OptionType:     domain.OptionCall,
		ObservedAt:     exp,
	}}, nil
}

type recordingWriter struct {
	mu       sync.Mutex
	steps    []string
	cleanups []application.CleanupRequest
	upserted []domain.QuoteRecord
}

func (r *recordingWriter) Cleanup(_ context.Context, req application.CleanupRequest) (domain.CleanupResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, "cleanup")
	r.cleanups = append(r.cleanups, req)
	return domain.CleanupResult{Success: true}, nil
}

func (r *recordingWriter) Upsert(_ context.Context, recs []domain.QuoteRecord) (domain.UpsertSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, "upsert")
	r.upserted = append(r.upserted, recs...)
	return domain.UpsertSummary{TotalProcessed: len(recs), Inserted: len(recs)}, nil
}

func (r *recordingWriter) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.steps...)
}

// Wednesday 2025-01-15.
var wed = time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)

func newCollector(w *recordingWriter, f *stubFetcher) *CollectorWorker {
	return &CollectorWorker{
		Quotes:            w,
		Tokens:            staticTokens{},
		Fetcher:           f,
		Symbols:           []string{"SPX"},
		ExpirationDays:    7,
		KeepDuration:      30 * time.Minute,
		CleanBeforeInsert: true,
		Log:               zap.NewNop(),
		Now:               func() time.Time { return wed },
	}
}

func TestUpcomingExpirations_SkipsWeekends(t *testing.T) {
	got := upcomingExpirations(wed, 7)
	require.Len(t, got, 5)
	for _, d := range got {
		require.NotEqual(t, time.Saturday, d.Weekday())
		require.NotEqual(t, time.Sunday, d.Weekday())
		require.Zero(t, d.Hour())
	}
	require.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), got[0])
	require.Equal(t, time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC), got[4])

	require.Len(t, upcomingExpirations(wed, 0), 1)
}

func TestRunOnce_CleanupBeforeUpsert(t *testing.T) {
	w, f := &recordingWriter{}, &stubFetcher{}
	c := newCollector(w, f)

	c.RunOnce(context.Background())

	require.Equal(t, []string{"cleanup", "upsert"}, w.snapshot())
	require.Len(t, f.calls, 5)
	require.Len(t, w.upserted, 5)
	require.Equal(t, []string{"SPX", "SPXW"}, w.cleanups[0].Symbols)
	require.Equal(t, 30*time.Minute, w.cleanups[0].KeepDuration)
	require.False(t, w.cleanups[0].DryRun)
}

func TestRunOnce_NoCleanupWhenDisabled(t *testing.T) {
	w, f := &recordingWriter{}, &stubFetcher{}
	c := newCollector(w, f)
	c.CleanBeforeInsert = false

	c.RunOnce(context.Background())
	require.Equal(t, []string{"upsert"}, w.snapshot())
}

func TestRunOnce_FetchErrorSkipsWrites(t *testing.T) {
	w, f := &recordingWriter{}, &stubFetcher{err: errors.New("vendor down")}
	c := newCollector(w, f)

	c.RunOnce(context.Background())
	require.Empty(t, w.snapshot())
}

func TestRunOnce_TokenErrorSkipsFetch(t *testing.T) {
	w, f := &recordingWriter{}, &stubFetcher{}
	c := newCollector(w, f)
	c.Tokens = staticTokens{err: application.ErrAuth}

	c.RunOnce(context.Background())
	require.Empty(t, f.calls)
	require.Empty(t, w.snapshot())
}

func TestRunOnce_PanicIsContained(t *testing.T) {
	w, f := &recordingWriter{}, &stubFetcher{panic: true}
	c := newCollector(w, f)
	c.Symbols = []string{"SPX", "NDX"}

	require.NotPanics(t, func() { c.RunOnce(context.Background()) })
	require.Empty(t, w.snapshot())
}

func TestStart_KickAndStop(t *testing.T) {
	w, f := &recordingWriter{}, &stubFetcher{}
	c := newCollector(w, f)
	c.Symbols = nil
	c.PollEvery = time.Hour
	kick := make(chan string, 1)
	c.Kick = kick

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	kick <- "NDX"
	require.Eventually(t, func() bool {
		return len(w.snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop")
	}
}
