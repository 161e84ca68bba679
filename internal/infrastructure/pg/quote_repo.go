package pg

import (
	"context"

	"optionquotes-service/internal/application"
	"optionquotes-service/internal/domain"
	"optionquotes-service/internal/infrastructure/logx"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var _ application.QuoteRepo = (*QuoteRepo)(nil)

type QuoteRepo struct{ db *DB }

func NewQuoteRepo(db *DB) *QuoteRepo { return &QuoteRepo{db: db} }

const quoteColumns = `underlying_symbol, option_symbol, expiration_date, expiration_type, strike, option_type,
        ask, bid, mid, close_price, high, last_price, low, open_price, previous_close,
        observed_at, created_at, updated_at`

// Upsert inserts rec or refreshes the prices and observation time of the row with
// the same option symbol. Identity columns and created_at are never rewritten.
// xmax is zero only for a freshly inserted tuple.
func (r *QuoteRepo) Upsert(ctx context.Context, rec domain.QuoteRecord) (domain.UpsertOutcome, error) {
	const up = `
        INSERT INTO option_quotes (
            underlying_symbol, option_symbol, expiration_date, expiration_type, strike, option_type,
            ask, bid, mid, close_price, high, last_price, low, open_price, previous_close, observed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        ON CONFLICT (option_symbol) DO UPDATE
          SET ask=EXCLUDED.ask, bid=EXCLUDED.bid, mid=EXCLUDED.mid,
              close_price=EXCLUDED.close_price, high=EXCLUDED.high, last_price=EXCLUDED.last_price,
              low=EXCLUDED.low, open_price=EXCLUDED.open_price, previous_close=EXCLUDED.previous_close,
              observed_at=EXCLUDED.observed_at, updated_at=NOW()
        RETURNING (xmax = 0) AS inserted`
	log := logx.L().With(
		zap.String("repo", "option_quotes"),
		zap.String("operation", "Upsert"),
		zap.String("option_symbol", rec.OptionSymbol),
	)
	log.Debug("sql.exec_start")
	var inserted bool
	err := r.db.withQuerier(ctx, func(q querier) error {
		return q.QueryRow(ctx, up,
			rec.UnderlyingSymbol, rec.OptionSymbol, rec.ExpirationDate, string(rec.ExpirationType),
			rec.Strike, string(rec.OptionType),
			rec.Ask, rec.Bid, rec.Mid, rec.Close, rec.High, rec.Last, rec.Low, rec.Open, rec.PreviousClose,
			rec.ObservedAt,
		).Scan(&inserted)
	})
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return "", classify("upsert", err)
	}
	if inserted {
		return domain.OutcomeInserted, nil
	}
	return domain.OutcomeUpdated, nil
}

func scanQuotes(rows pgx.Rows) ([]domain.QuoteRecord, error) {
	defer rows.Close()
	out := []domain.QuoteRecord{}
	for rows.Next() {
		var rec domain.QuoteRecord
		var expType, optType string
		if err := rows.Scan(
			&rec.UnderlyingSymbol, &rec.OptionSymbol, &rec.ExpirationDate, &expType, &rec.Strike, &optType,
			&rec.Ask, &rec.Bid, &rec.Mid, &rec.Close, &rec.High, &rec.Last, &rec.Low, &rec.Open, &rec.PreviousClose,
			&rec.ObservedAt, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rec.ExpirationType = domain.ExpirationType(expType)
		rec.OptionType = domain.OptionType(optType)
		out = append(out, rec)
	}
	return out, rows.Err()
}
