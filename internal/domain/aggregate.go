package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AggregateRow sums mid prices of one (expiration, strike) group. Quotes without a
// mid price are not part of any sum or count.
type AggregateRow struct {
	ExpirationDate      time.Time       `json:"expiration_date"`
	Strike              decimal.Decimal `json:"strike"`
	CallMidSum          decimal.Decimal `json:"call_mid_sum"`
	PutMidSum           decimal.Decimal `json:"put_mid_sum"`
	TotalMidSum         decimal.Decimal `json:"total_mid_sum"`
	OptionCount         int64           `json:"option_count"`
	CallCount           int64           `json:"call_count"`
	PutCount            int64           `json:"put_count"`
	ContributingSymbols []string        `json:"contributing_symbols"`
}
