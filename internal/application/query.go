package application

import (
	"context"
	"strings"
	"time"

	"optionquotes-service/internal/domain"
)

// Latest returns up to limit quotes for symbol, newest observation first.
func (s *QuoteService) Latest(ctx context.Context, symbol string, limit int) ([]domain.QuoteRecord, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, validationf("symbol is required")
	}
	if limit < 0 {
		return nil, validationf("limit must not be negative, got %d", limit)
	}
	if limit == 0 {
		return []domain.QuoteRecord{}, nil
	}
	out, err := s.repo.Latest(ctx, symbol, limit)
	if err != nil {
		return nil, wrapRead("latest", symbol, err)
	}
	return nonNil(out), nil
}

// Range returns quotes whose expiration falls in [start, end]. A nil end is unbounded.
func (s *QuoteService) Range(ctx context.Context, symbol string, start time.Time, end *time.Time) ([]domain.QuoteRecord, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, validationf("symbol is required")
	}
	from, to, err := dateBounds(start, end)
	if err != nil {
		return nil, err
	}
	out, err := s.repo.Range(ctx, symbol, from, to)
	if err != nil {
		return nil, wrapRead("range", symbol, err)
	}
	return nonNil(out), nil
}

// Aggregate sums mid prices by (expiration, strike) across all given symbols, so a
// root and its weekly series can be read as one book.
func (s *QuoteService) Aggregate(ctx context.Context, symbols []string, start time.Time, end *time.Time) ([]domain.AggregateRow, error) {
	syms, err := normalizeSymbols(symbols)
	if err != nil {
		return nil, err
	}
	if len(syms) == 0 {
		return nil, validationf("at least one symbol is required")
	}
	from, to, err := dateBounds(start, end)
	if err != nil {
		return nil, err
	}
	out, err := s.repo.AggregateByStrike(ctx, syms, from, to)
	if err != nil {
		return nil, wrapRead("aggregate", strings.Join(syms, ","), err)
	}
	if out == nil {
		out = []domain.AggregateRow{}
	}
	return out, nil
}

func dateBounds(start time.Time, end *time.Time) (time.Time, time.Time, error) {
	if start.IsZero() {
		return time.Time{}, time.Time{}, validationf("start date is required")
	}
	to := domain.FarFuture
	if end != nil {
		to = *end
	}
	return start, to, nil
}

func nonNil(in []domain.QuoteRecord) []domain.QuoteRecord {
	if in == nil {
		return []domain.QuoteRecord{}
	}
	return in
}
