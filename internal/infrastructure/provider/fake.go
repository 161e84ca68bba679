package provider

import (
	"context"
	"fmt"
	"time"

	"optionquotes-service/internal/application"
	"optionquotes-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Ensure Fake implements application.QuoteFetcher.
var _ application.QuoteFetcher = (*Fake)(nil)

// Fake produces a small deterministic chain around a fixed spot price.
type Fake struct {
	spot    decimal.Decimal
	strikes int
	now     func() time.Time
}

func NewFake(spot float64, strikes int) *Fake {
	return &Fake{spot: decimal.NewFromFloat(spot), strikes: strikes, now: func() time.Time { return time.Now().UTC() }}
}

func (f *Fake) FetchQuoteRecords(_ context.Context, _ domain.Token, symbol string, expiration time.Time) ([]domain.QuoteRecord, error) {
	observed := f.now()
	et := domain.ExpirationWeekly
	if isMonthly(expiration) {
		et = domain.ExpirationMonthly
	}
	step := decimal.NewFromInt(5)
	base := f.spot.Div(step).Floor().Mul(step)

	out := make([]domain.QuoteRecord, 0, 2*(2*f.strikes+1))
	for i := -f.strikes; i <= f.strikes; i++ {
		strike := base.Add(step.Mul(decimal.NewFromInt(int64(i))))
		for _, ot := range []domain.OptionType{domain.OptionCall, domain.OptionPut} {
			intrinsic := f.spot.Sub(strike)
			if ot == domain.OptionPut {
				intrinsic = intrinsic.Neg()
			}
			mid := decimal.Max(intrinsic, decimal.Zero).Add(decimal.NewFromFloat(1.25))
			out = append(out, domain.QuoteRecord{
				UnderlyingSymbol: symbol,
				OptionSymbol:     occSymbol(symbol, expiration, ot, strike),
				ExpirationDate:   expiration,
				ExpirationType:   et,
				Strike:           strike,
				OptionType:       ot,
				Bid:              decimal.NullDecimal{Decimal: mid.Sub(decimal.NewFromFloat(0.05)), Valid: true},
				Ask:              decimal.NullDecimal{Decimal: mid.Add(decimal.NewFromFloat(0.05)), Valid: true},
				Mid:              decimal.NullDecimal{Decimal: mid, Valid: true},
				ObservedAt:       observed,
			})
		}
	}
	return out, nil
}

// occSymbol renders "ROOT YYMMDD[C|P]SSSSSSSS" with the strike in thousandths.
func occSymbol(root string, exp time.Time, ot domain.OptionType, strike decimal.Decimal) string {
	side := "C"
	if ot == domain.OptionPut {
		side = "P"
	}
	return fmt.Sprintf("%s %s%s%08d", root, exp.Format("060102"), side, strike.Mul(decimal.NewFromInt(1000)).IntPart())
}

// isMonthly reports whether d is the third Friday of its month.
func isMonthly(d time.Time) bool {
	return d.Weekday() == time.Friday && d.Day() >= 15 && d.Day() <= 21
}
