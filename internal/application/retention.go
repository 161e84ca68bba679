package application

import (
	"context"
	"time"

	"optionquotes-service/internal/domain"

	"go.uber.org/zap"
)

type CleanupRequest struct {
	Symbols      []string
	All          bool
	KeepDuration time.Duration
	DryRun       bool
}

// Cleanup removes quotes observed before now-KeepDuration for the requested symbols.
// All symbols are handled in one transaction; a dry run takes the same path and
// rolls back at the end.
func (s *QuoteService) Cleanup(ctx context.Context, req CleanupRequest) (domain.CleanupResult, error) {
	if req.KeepDuration <= 0 {
		return domain.CleanupResult{}, validationf("keep duration must be positive, got %s", req.KeepDuration)
	}
	symbols, err := normalizeSymbols(req.Symbols)
	if err != nil {
		return domain.CleanupResult{}, err
	}
	if !req.All && len(symbols) == 0 {
		return domain.CleanupResult{}, validationf("no symbols given")
	}

	cutoff := s.clock.Now().Add(-req.KeepDuration)
	result := domain.CleanupResult{
		DryRun:       req.DryRun,
		CutoffTime:   cutoff,
		KeepDuration: req.KeepDuration,
		PerSymbol:    []domain.SymbolCleanup{},
	}
	log := s.log.With(
		zap.Bool("dry_run", req.DryRun),
		zap.Time("cutoff", cutoff),
		zap.Duration("keep", req.KeepDuration),
	)

	if req.All {
		symbols, err = s.repo.DistinctUnderlyings(ctx)
		if err != nil {
			return domain.CleanupResult{}, wrapRead("cleanup.list_symbols", "", err)
		}
		if len(symbols) == 0 {
			result.Success = true
			log.Info("cleanup_nothing_to_do")
			return result, nil
		}
	}

	var per []domain.SymbolCleanup
	err = s.uow.Run(ctx, !req.DryRun, func(ctx context.Context) error {
		stats, err := s.repo.RetentionStats(ctx, symbols, cutoff)
		if err != nil {
			return wrapWrite("cleanup.stats", "", err)
		}
		bySymbol := make(map[string]domain.RetentionStats, len(stats))
		for _, st := range stats {
			bySymbol[st.Symbol] = st
		}

		per = make([]domain.SymbolCleanup, 0, len(symbols))
		for _, sym := range symbols {
			st := bySymbol[sym]
			entry := domain.SymbolCleanup{
				Symbol:           sym,
				TotalRecords:     st.TotalRecords,
				StaleRecords:     st.StaleRecords,
				KeptRecords:      st.KeptRecords(),
				OldestObservedAt: st.OldestObservedAt,
				NewestObservedAt: st.NewestObservedAt,
				Action:           domain.ActionNoAction,
			}
			switch {
			case st.StaleRecords == 0:
			case req.DryRun:
				entry.Action = domain.ActionWouldDelete
			default:
				n, err := s.repo.DeleteObservedBefore(ctx, sym, cutoff)
				if err != nil {
					return wrapWrite("cleanup.delete", sym, err)
				}
				entry.Deleted = n
				entry.Action = domain.ActionDeleted
			}
			per = append(per, entry)
		}
		return nil
	})
	if err != nil {
		log.Warn("cleanup_failed", zap.Strings("symbols", symbols), zap.Error(err))
		return domain.CleanupResult{}, wrapWrite("cleanup", "", err)
	}

	result.PerSymbol = per
	result.SymbolsProcessed = len(per)
	for _, e := range per {
		if req.DryRun {
			result.WouldDelete += e.StaleRecords
		} else {
			result.TotalDeleted += e.Deleted
		}
	}
	result.Success = true
	s.metrics.ObserveCleanup(result)
	log.Info("cleanup_done",
		zap.Int("symbols", result.SymbolsProcessed),
		zap.Int64("deleted", result.TotalDeleted),
		zap.Int64("would_delete", result.WouldDelete),
	)
	return result, nil
}
