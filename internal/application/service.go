package application

import (
	"context"
	"errors"
	"strings"

	"optionquotes-service/internal/domain"

	"go.uber.org/zap"
)

// QuoteService is the point-in-time store for option quote snapshots: batched
// upserts, retention cleanup and read views over one table.
type QuoteService struct {
	repo       QuoteRepo
	uow        UnitOfWork
	clock      Clock
	metrics    Metrics
	log        *zap.Logger
	underlying func(optionSymbol string) string
}

type Option func(*QuoteService)

func WithClock(c Clock) Option     { return func(s *QuoteService) { s.clock = c } }
func WithMetrics(m Metrics) Option { return func(s *QuoteService) { s.metrics = m } }
func WithLogger(l *zap.Logger) Option {
	return func(s *QuoteService) { s.log = l }
}

// WithUnderlyingParser replaces the rule that maps a contract symbol to its underlying.
func WithUnderlyingParser(fn func(optionSymbol string) string) Option {
	return func(s *QuoteService) { s.underlying = fn }
}

func NewQuoteService(repo QuoteRepo, uow UnitOfWork, opts ...Option) *QuoteService {
	s := &QuoteService{repo: repo, uow: uow}
	for _, opt := range opts {
		opt(s)
	}
	if s.uow == nil {
		s.uow = NoopUoW{}
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.metrics == nil {
		s.metrics = NoopMetrics{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.underlying == nil {
		s.underlying = domain.UnderlyingFromOptionSymbol
	}
	return s
}

func (s *QuoteService) ListSymbols(ctx context.Context) ([]string, error) {
	out, err := s.repo.DistinctUnderlyings(ctx)
	if err != nil {
		return nil, wrapRead("list_symbols", "", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (s *QuoteService) HealthCheck(ctx context.Context) (domain.HealthStatus, error) {
	st, err := s.repo.Health(ctx)
	st.CheckedAt = s.clock.Now()
	if err != nil {
		st.Healthy = false
		return st, wrapRead("health_check", "", err)
	}
	st.Healthy = true
	return st, nil
}

// normalizeSymbols trims and de-duplicates symbols, keeping first-seen order.
func normalizeSymbols(in []string) ([]string, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		sym := strings.TrimSpace(raw)
		if sym == "" {
			return nil, validationf("empty symbol")
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out, nil
}

func wrapRead(op, symbol string, err error) error {
	if errors.Is(err, ErrConnection) {
		return &OpError{Op: op, Symbol: symbol, Kind: ErrConnection, Err: err}
	}
	return &OpError{Op: op, Symbol: symbol, Err: err}
}
