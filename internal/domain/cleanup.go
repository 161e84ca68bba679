package domain

import "time"

type CleanupAction string

const (
	ActionDeleted     CleanupAction = "deleted"
	ActionWouldDelete CleanupAction = "would_delete"
	ActionNoAction    CleanupAction = "no_action"
)

// RetentionStats is the per-symbol snapshot taken before a cleanup mutates anything.
type RetentionStats struct {
	Symbol           string
	TotalRecords     int64
	StaleRecords     int64
	OldestObservedAt *time.Time
	NewestObservedAt *time.Time
}

func (s RetentionStats) KeptRecords() int64 { return s.TotalRecords - s.StaleRecords }

type SymbolCleanup struct {
	Symbol           string        `json:"symbol"`
	TotalRecords     int64         `json:"total_records"`
	StaleRecords     int64         `json:"stale_records"`
	KeptRecords      int64         `json:"kept_records"`
	Deleted          int64         `json:"deleted"`
	OldestObservedAt *time.Time    `json:"oldest_observed_at,omitempty"`
	NewestObservedAt *time.Time    `json:"newest_observed_at,omitempty"`
	Action           CleanupAction `json:"action"`
}

// CleanupResult describes one cleanup invocation. TotalDeleted only ever counts rows
// that were actually removed; a dry run reports its would-be deletions in WouldDelete.
type CleanupResult struct {
	Success          bool            `json:"success"`
	DryRun           bool            `json:"dry_run"`
	CutoffTime       time.Time       `json:"cutoff_time"`
	KeepDuration     time.Duration   `json:"keep_duration"`
	SymbolsProcessed int             `json:"symbols_processed"`
	TotalDeleted     int64           `json:"total_deleted"`
	WouldDelete      int64           `json:"would_delete"`
	PerSymbol        []SymbolCleanup `json:"per_symbol"`
}
