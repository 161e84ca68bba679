package pg

import (
	"context"
	"time"

	"optionquotes-service/internal/domain"
	"optionquotes-service/internal/infrastructure/logx"

	"go.uber.org/zap"
)

func (r *QuoteRepo) DistinctUnderlyings(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT underlying_symbol FROM option_quotes ORDER BY underlying_symbol`
	out := []string{}
	err := r.db.withQuerier(ctx, func(qr querier) error {
		rows, err := qr.Query(ctx, q)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var s string
			if err := rows.Scan(&s); err != nil {
				return err
			}
			out = append(out, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, classify("distinct underlyings", err)
	}
	return out, nil
}

// RetentionStats counts total and stale rows per symbol in a single pass. Symbols
// without rows are absent from the result.
func (r *QuoteRepo) RetentionStats(ctx context.Context, symbols []string, cutoff time.Time) ([]domain.RetentionStats, error) {
	const q = `
        SELECT underlying_symbol,
               COUNT(*),
               COUNT(*) FILTER (WHERE observed_at < $2),
               MIN(observed_at),
               MAX(observed_at)
        FROM option_quotes
        WHERE underlying_symbol = ANY($1)
        GROUP BY underlying_symbol`
	log := logx.L().With(
		zap.String("repo", "option_quotes"),
		zap.String("operation", "RetentionStats"),
		zap.Strings("symbols", symbols),
		zap.Time("cutoff", cutoff),
	)
	log.Info("sql.query_start")
	var out []domain.RetentionStats
	err := r.db.withQuerier(ctx, func(qr querier) error {
		rows, err := qr.Query(ctx, q, symbols, cutoff)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var st domain.RetentionStats
			var oldest, newest time.Time
			if err := rows.Scan(&st.Symbol, &st.TotalRecords, &st.StaleRecords, &oldest, &newest); err != nil {
				return err
			}
			st.OldestObservedAt, st.NewestObservedAt = &oldest, &newest
			out = append(out, st)
		}
		return rows.Err()
	})
	if err != nil {
		log.Error("sql.query_failed", zap.Error(err))
		return nil, classify("retention stats", err)
	}
	log.Info("sql.query_success", zap.Int("symbols_found", len(out)))
	return out, nil
}

func (r *QuoteRepo) DeleteObservedBefore(ctx context.Context, symbol string, cutoff time.Time) (int64, error) {
	const del = `DELETE FROM option_quotes WHERE underlying_symbol = $1 AND observed_at < $2`
	log := logx.L().With(
		zap.String("repo", "option_quotes"),
		zap.String("operation", "DeleteObservedBefore"),
		zap.String("symbol", symbol),
		zap.Time("cutoff", cutoff),
	)
	log.Info("sql.exec_start")
	var n int64
	err := r.db.withQuerier(ctx, func(q querier) error {
		tag, err := q.Exec(ctx, del, symbol, cutoff)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return 0, classify("delete stale", err)
	}
	log.Info("sql.exec_success", zap.Int64("rows_affected", n))
	return n, nil
}
