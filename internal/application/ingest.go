package application

import (
	"context"
	"strings"

	"optionquotes-service/internal/domain"

	"go.uber.org/zap"
)

// Upsert writes the batch in one transaction. Each record is inserted, or updates
// the stored row with the same option symbol. A failing record rolls back the batch.
func (s *QuoteService) Upsert(ctx context.Context, records []domain.QuoteRecord) (domain.UpsertSummary, error) {
	if len(records) == 0 {
		return domain.UpsertSummary{Outcomes: []domain.RecordOutcome{}}, nil
	}
	batch := make([]domain.QuoteRecord, 0, len(records))
	for i, rec := range records {
		if err := validateRecord(rec); err != nil {
			return domain.UpsertSummary{}, validationf("record %d (%q): %v", i, rec.OptionSymbol, err)
		}
		rec.UnderlyingSymbol = s.underlying(rec.OptionSymbol)
		if rec.UnderlyingSymbol == "" {
			return domain.UpsertSummary{}, validationf("record %d (%q): no underlying symbol", i, rec.OptionSymbol)
		}
		batch = append(batch, rec)
	}

	var summary domain.UpsertSummary
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		summary = domain.UpsertSummary{Outcomes: make([]domain.RecordOutcome, 0, len(batch))}
		for _, rec := range batch {
			outcome, err := s.repo.Upsert(ctx, rec)
			if err != nil {
				return wrapWrite("upsert", rec.OptionSymbol, err)
			}
			summary.Add(rec.OptionSymbol, outcome)
		}
		return nil
	})
	if err != nil {
		s.log.Warn("upsert_failed", zap.Int("records", len(batch)), zap.Error(err))
		return domain.UpsertSummary{}, wrapWrite("upsert", "", err)
	}
	s.metrics.ObserveUpsert(summary)
	s.log.Info("upsert_done",
		zap.Int("total", summary.TotalProcessed),
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated),
	)
	return summary, nil
}

func validateRecord(rec domain.QuoteRecord) error {
	switch {
	case strings.TrimSpace(rec.OptionSymbol) == "":
		return errString("option symbol is required")
	case rec.ExpirationDate.IsZero():
		return errString("expiration date is required")
	case !rec.ExpirationType.Valid():
		return errString("expiration type must be weekly or monthly")
	case !rec.OptionType.Valid():
		return errString("option type must be put or call")
	case rec.ObservedAt.IsZero():
		return errString("observed_at is required")
	}
	return nil
}

type errString string

func (e errString) Error() string { return string(e) }
