package application

import (
	"context"
	"time"

	"optionquotes-service/internal/domain"
)

// QuoteRepo is the store behind the quote service. Write methods participate in the
// transaction carried by ctx when one is present.
type QuoteRepo interface {
	Upsert(ctx context.Context, rec domain.QuoteRecord) (domain.UpsertOutcome, error)

	DistinctUnderlyings(ctx context.Context) ([]string, error)
	RetentionStats(ctx context.Context, symbols []string, cutoff time.Time) ([]domain.RetentionStats, error)
	DeleteObservedBefore(ctx context.Context, symbol string, cutoff time.Time) (int64, error)

	Latest(ctx context.Context, symbol string, limit int) ([]domain.QuoteRecord, error)
	Range(ctx context.Context, symbol string, start, end time.Time) ([]domain.QuoteRecord, error)
	AggregateByStrike(ctx context.Context, symbols []string, start, end time.Time) ([]domain.AggregateRow, error)

	Health(ctx context.Context) (domain.HealthStatus, error)
}

// TokenProvider hands out a bearer credential for the upstream API.
type TokenProvider interface {
	GetValidToken(ctx context.Context) (domain.Token, error)
}

// QuoteFetcher turns one (symbol, expiration) chain into normalized records.
type QuoteFetcher interface {
	FetchQuoteRecords(ctx context.Context, token domain.Token, symbol string, expiration time.Time) ([]domain.QuoteRecord, error)
}
