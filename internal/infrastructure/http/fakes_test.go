package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"optionquotes-service/internal/application"
	"optionquotes-service/internal/domain"
)

var _ QuoteAPI = (*fakeAPI)(nil)

// fakeAPI records the arguments it was called with and returns canned results.
type fakeAPI struct {
	mu sync.Mutex

	err error

	upserted   []domain.QuoteRecord
	cleanupReq application.CleanupRequest
	latestSym  string
	latestN    int
	rangeStart time.Time
	rangeEnd   *time.Time
	aggSymbols []string

	quotes  []domain.QuoteRecord
	rows    []domain.AggregateRow
	symbols []string
	health  domain.HealthStatus
}

func (f *fakeAPI) Upsert(_ context.Context, recs []domain.QuoteRecord) (domain.UpsertSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.UpsertSummary{}, f.err
	}
	f.upserted = append(f.upserted, recs...)
	var sum domain.UpsertSummary
	for _, r := range recs {
		sum.Add(r.OptionSymbol, domain.OutcomeInserted)
	}
	return sum, nil
}

func (f *fakeAPI) Cleanup(_ context.Context, req application.CleanupRequest) (domain.CleanupResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanupReq = req
	if f.err != nil {
		return domain.CleanupResult{}, f.err
	}
	return domain.CleanupResult{Success: true, DryRun: req.DryRun, KeepDuration: req.KeepDuration, PerSymbol: []domain.SymbolCleanup{}}, nil
}

func (f *fakeAPI) Latest(_ context.Context, symbol string, limit int) ([]domain.QuoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestSym, f.latestN = symbol, limit
	return f.quotes, f.err
}

func (f *fakeAPI) Range(_ context.Context, _ string, start time.Time, end *time.Time) ([]domain.QuoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rangeStart, f.rangeEnd = start, end
	return f.quotes, f.err
}

func (f *fakeAPI) Aggregate(_ context.Context, symbols []string, start time.Time, end *time.Time) ([]domain.AggregateRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aggSymbols, f.rangeStart, f.rangeEnd = symbols, start, end
	return f.rows, f.err
}

func (f *fakeAPI) ListSymbols(context.Context) ([]string, error) {
	return f.symbols, f.err
}

func (f *fakeAPI) HealthCheck(context.Context) (domain.HealthStatus, error) {
	return f.health, f.err
}

// memIdem is a map-backed idempotency store.
type memIdem struct {
	mu       sync.Mutex
	keys     map[string]bool
	err      error
	released []string
}

func (m *memIdem) TryReserve(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.keys == nil {
		m.keys = map[string]bool{}
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memIdem) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	m.released = append(m.released, key)
	return nil
}

type countingMetrics struct {
	mu     sync.Mutex
	routes []string
	pool   *domain.HealthStatus
}

func (c *countingMetrics) ObserveHTTP(_ string, route string, _ int, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes = append(c.routes, route)
}

func (c *countingMetrics) ObservePool(h domain.HealthStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pool = &h
}

func (c *countingMetrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	})
}
