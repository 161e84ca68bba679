package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"optionquotes-service/internal/domain"

	"github.com/shopspring/decimal"
)

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

// memStore is a QuoteRepo and UnitOfWork over a map. Run snapshots the rows and
// restores them on error or when commit is false.
type memStore struct {
	mu   sync.Mutex
	rows map[string]domain.QuoteRecord
	now  time.Time

	failUpsert map[string]error
	failDelete map[string]error
	failRead   error

	calls     int
	txBegun   int
	commits   int
	rollbacks int
}

var _ QuoteRepo = (*memStore)(nil)
var _ UnitOfWork = (*memStore)(nil)

func newMemStore(now time.Time) *memStore {
	return &memStore{rows: map[string]domain.QuoteRecord{}, now: now}
}

func (m *memStore) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Run(ctx, true, fn)
}

func (m *memStore) Run(ctx context.Context, commit bool, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.txBegun++
	snapshot := make(map[string]domain.QuoteRecord, len(m.rows))
	for k, v := range m.rows {
		snapshot[k] = v
	}
	m.mu.Unlock()

	err := fn(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil || !commit {
		m.rows = snapshot
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

func (m *memStore) Upsert(_ context.Context, rec domain.QuoteRecord) (domain.UpsertOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.failUpsert[rec.OptionSymbol]; err != nil {
		return "", err
	}
	old, ok := m.rows[rec.OptionSymbol]
	if !ok {
		rec.CreatedAt = m.now
		rec.UpdatedAt = m.now
		m.rows[rec.OptionSymbol] = rec
		return domain.OutcomeInserted, nil
	}
	old.Ask, old.Bid, old.Mid, old.Close = rec.Ask, rec.Bid, rec.Mid, rec.Close
	old.High, old.Last, old.Low, old.Open = rec.High, rec.Last, rec.Low, rec.Open
	old.PreviousClose = rec.PreviousClose
	old.ObservedAt = rec.ObservedAt
	old.UpdatedAt = m.now
	m.rows[rec.OptionSymbol] = old
	return domain.OutcomeUpdated, nil
}

func (m *memStore) DistinctUnderlyings(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failRead != nil {
		return nil, m.failRead
	}
	set := map[string]struct{}{}
	for _, r := range m.rows {
		set[r.UnderlyingSymbol] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) RetentionStats(_ context.Context, symbols []string, cutoff time.Time) ([]domain.RetentionStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	want := map[string]*domain.RetentionStats{}
	for _, s := range symbols {
		want[s] = nil
	}
	for _, r := range m.rows {
		if _, ok := want[r.UnderlyingSymbol]; !ok {
			continue
		}
		st := want[r.UnderlyingSymbol]
		if st == nil {
			st = &domain.RetentionStats{Symbol: r.UnderlyingSymbol}
			want[r.UnderlyingSymbol] = st
		}
		st.TotalRecords++
		if r.ObservedAt.Before(cutoff) {
			st.StaleRecords++
		}
		obs := r.ObservedAt
		if st.OldestObservedAt == nil || obs.Before(*st.OldestObservedAt) {
			st.OldestObservedAt = &obs
		}
		if st.NewestObservedAt == nil || obs.After(*st.NewestObservedAt) {
			st.NewestObservedAt = &obs
		}
	}
	var out []domain.RetentionStats
	for _, st := range want {
		if st != nil {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (m *memStore) DeleteObservedBefore(_ context.Context, symbol string, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.failDelete[symbol]; err != nil {
		return 0, err
	}
	var n int64
	for k, r := range m.rows {
		if r.UnderlyingSymbol == symbol && r.ObservedAt.Before(cutoff) {
			delete(m.rows, k)
			n++
		}
	}
	return n, nil
}

func (m *memStore) Latest(_ context.Context, symbol string, limit int) ([]domain.QuoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failRead != nil {
		return nil, m.failRead
	}
	var out []domain.QuoteRecord
	for _, r := range m.rows {
		if r.UnderlyingSymbol == symbol {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.ObservedAt.Equal(b.ObservedAt) {
			return a.ObservedAt.After(b.ObservedAt)
		}
		if !a.ExpirationDate.Equal(b.ExpirationDate) {
			return a.ExpirationDate.Before(b.ExpirationDate)
		}
		return a.Strike.LessThan(b.Strike)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Range(_ context.Context, symbol string, start, end time.Time) ([]domain.QuoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	var out []domain.QuoteRecord
	for _, r := range m.rows {
		if r.UnderlyingSymbol == symbol && !r.ExpirationDate.Before(start) && !r.ExpirationDate.After(end) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.ExpirationDate.Equal(b.ExpirationDate) {
			return a.ExpirationDate.Before(b.ExpirationDate)
		}
		if !a.Strike.Equal(b.Strike) {
			return a.Strike.LessThan(b.Strike)
		}
		return a.OptionType < b.OptionType
	})
	return out, nil
}

func (m *memStore) AggregateByStrike(_ context.Context, symbols []string, start, end time.Time) ([]domain.AggregateRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	want := map[string]bool{}
	for _, s := range symbols {
		want[s] = true
	}
	type key struct {
		exp    time.Time
		strike string
	}
	groups := map[key]*domain.AggregateRow{}
	contrib := map[key]map[string]bool{}
	for _, r := range m.rows {
		if !want[r.UnderlyingSymbol] || !r.Mid.Valid {
			continue
		}
		if r.ExpirationDate.Before(start) || r.ExpirationDate.After(end) {
			continue
		}
		k := key{r.ExpirationDate, r.Strike.String()}
		g := groups[k]
		if g == nil {
			g = &domain.AggregateRow{ExpirationDate: r.ExpirationDate, Strike: r.Strike}
			groups[k] = g
			contrib[k] = map[string]bool{}
		}
		g.OptionCount++
		g.TotalMidSum = g.TotalMidSum.Add(r.Mid.Decimal)
		if r.OptionType == domain.OptionCall {
			g.CallCount++
			g.CallMidSum = g.CallMidSum.Add(r.Mid.Decimal)
		} else {
			g.PutCount++
			g.PutMidSum = g.PutMidSum.Add(r.Mid.Decimal)
		}
		contrib[k][r.UnderlyingSymbol] = true
	}
	out := make([]domain.AggregateRow, 0, len(groups))
	for k, g := range groups {
		for s := range contrib[k] {
			g.ContributingSymbols = append(g.ContributingSymbols, s)
		}
		sort.Strings(g.ContributingSymbols)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpirationDate.Equal(out[j].ExpirationDate) {
			return out[i].ExpirationDate.Before(out[j].ExpirationDate)
		}
		return out[i].Strike.LessThan(out[j].Strike)
	})
	return out, nil
}

func (m *memStore) Health(context.Context) (domain.HealthStatus, error) {
	if m.failRead != nil {
		return domain.HealthStatus{}, m.failRead
	}
	return domain.HealthStatus{TotalConns: 1, MaxConns: 4}, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memStore) get(optionSymbol string) (domain.QuoteRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[optionSymbol]
	return r, ok
}

type recordingMetrics struct {
	upserts  []domain.UpsertSummary
	cleanups []domain.CleanupResult
}

func (r *recordingMetrics) ObserveUpsert(s domain.UpsertSummary)  { r.upserts = append(r.upserts, s) }
func (r *recordingMetrics) ObserveCleanup(c domain.CleanupResult) { r.cleanups = append(r.cleanups, c) }

func quote(optionSymbol string, exp time.Time, strike float64, typ domain.OptionType, observed time.Time) domain.QuoteRecord {
	return domain.QuoteRecord{
		OptionSymbol:   optionSymbol,
		ExpirationDate: exp,
		ExpirationType: domain.ExpirationWeekly,
		Strike:         decimal.NewFromFloat(strike),
		OptionType:     typ,
		Mid:            domain.Price(1),
		ObservedAt:     observed,
	}
}
