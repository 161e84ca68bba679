package application

import "optionquotes-service/internal/domain"

// Metrics receives counters from the quote service.
type Metrics interface {
	ObserveUpsert(summary domain.UpsertSummary)
	ObserveCleanup(result domain.CleanupResult)
}

type NoopMetrics struct{}

func (NoopMetrics) ObserveUpsert(domain.UpsertSummary)  {}
func (NoopMetrics) ObserveCleanup(domain.CleanupResult) {}
