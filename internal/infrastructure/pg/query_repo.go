package pg

import (
	"context"
	"time"

	"optionquotes-service/internal/domain"
)

func (r *QuoteRepo) Latest(ctx context.Context, symbol string, limit int) ([]domain.QuoteRecord, error) {
	q := `SELECT ` + quoteColumns + `
        FROM option_quotes
        WHERE underlying_symbol = $1
        ORDER BY observed_at DESC, expiration_date, strike
        LIMIT $2`
	var out []domain.QuoteRecord
	err := r.db.withQuerier(ctx, func(qr querier) error {
		rows, err := qr.Query(ctx, q, symbol, limit)
		if err != nil {
			return err
		}
		out, err = scanQuotes(rows)
		return err
	})
	if err != nil {
		return nil, classify("latest", err)
	}
	return out, nil
}

func (r *QuoteRepo) Range(ctx context.Context, symbol string, start, end time.Time) ([]domain.QuoteRecord, error) {
	q := `SELECT ` + quoteColumns + `
        FROM option_quotes
        WHERE underlying_symbol = $1 AND expiration_date BETWEEN $2 AND $3
        ORDER BY expiration_date, strike, option_type`
	var out []domain.QuoteRecord
	err := r.db.withQuerier(ctx, func(qr querier) error {
		rows, err := qr.Query(ctx, q, symbol, start, end)
		if err != nil {
			return err
		}
		out, err = scanQuotes(rows)
		return err
	})
	if err != nil {
		return nil, classify("range", err)
	}
	return out, nil
}

// AggregateByStrike groups priced quotes of all symbols by (expiration, strike).
// Rows without a mid price are filtered out before grouping.
func (r *QuoteRepo) AggregateByStrike(ctx context.Context, symbols []string, start, end time.Time) ([]domain.AggregateRow, error) {
	const q = `
        SELECT expiration_date,
               strike,
               COALESCE(SUM(mid) FILTER (WHERE option_type = 'call'), 0),
               COALESCE(SUM(mid) FILTER (WHERE option_type = 'put'), 0),
               SUM(mid),
               COUNT(*),
               COUNT(*) FILTER (WHERE option_type = 'call'),
               COUNT(*) FILTER (WHERE option_type = 'put'),
               array_agg(DISTINCT underlying_symbol ORDER BY underlying_symbol)
        FROM option_quotes
        WHERE underlying_symbol = ANY($1)
          AND expiration_date BETWEEN $2 AND $3
          AND mid IS NOT NULL
        GROUP BY expiration_date, strike
        ORDER BY expiration_date, strike`
	out := []domain.AggregateRow{}
	err := r.db.withQuerier(ctx, func(qr querier) error {
		rows, err := qr.Query(ctx, q, symbols, start, end)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var row domain.AggregateRow
			if err := rows.Scan(
				&row.ExpirationDate, &row.Strike,
				&row.CallMidSum, &row.PutMidSum, &row.TotalMidSum,
				&row.OptionCount, &row.CallCount, &row.PutCount,
				&row.ContributingSymbols,
			); err != nil {
				return err
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, classify("aggregate", err)
	}
	return out, nil
}

func (r *QuoteRepo) Health(ctx context.Context) (domain.HealthStatus, error) {
	err := r.db.Ping(ctx)
	st := r.db.Pool.Stat()
	return domain.HealthStatus{
		TotalConns:    st.TotalConns(),
		IdleConns:     st.IdleConns(),
		AcquiredConns: st.AcquiredConns(),
		MaxConns:      st.MaxConns(),
	}, err
}
