package httpserver

import (
	"errors"
	"time"

	"optionquotes-service/internal/domain"

	"github.com/shopspring/decimal"
)

// quoteJSON is the wire shape of a quote. Decimals accept JSON numbers or strings
// and are written as strings.
type quoteJSON struct {
	UnderlyingSymbol string              `json:"underlying_symbol,omitempty"`
	OptionSymbol     string              `json:"option_symbol"`
	ExpirationDate   string              `json:"expiration_date"`
	ExpirationType   string              `json:"expiration_type"`
	Strike           decimal.Decimal     `json:"strike"`
	OptionType       string              `json:"option_type"`
	Ask              decimal.NullDecimal `json:"ask"`
	Bid              decimal.NullDecimal `json:"bid"`
	Mid              decimal.NullDecimal `json:"mid"`
	Close            decimal.NullDecimal `json:"close"`
	High             decimal.NullDecimal `json:"high"`
	Last             decimal.NullDecimal `json:"last"`
	Low              decimal.NullDecimal `json:"low"`
	Open             decimal.NullDecimal `json:"open"`
	PreviousClose    decimal.NullDecimal `json:"previous_close"`
	ObservedAt       time.Time           `json:"observed_at"`
	CreatedAt        *time.Time          `json:"created_at,omitempty"`
	UpdatedAt        *time.Time          `json:"updated_at,omitempty"`
}

func (q quoteJSON) toDomain() (domain.QuoteRecord, error) {
	if q.ExpirationDate == "" {
		return domain.QuoteRecord{}, errors.New("expiration_date is required")
	}
	exp, err := domain.ParseDate(q.ExpirationDate)
	if err != nil {
		return domain.QuoteRecord{}, err
	}
	return domain.QuoteRecord{
		UnderlyingSymbol: q.UnderlyingSymbol,
		OptionSymbol:     q.OptionSymbol,
		ExpirationDate:   exp,
		ExpirationType:   domain.ExpirationType(q.ExpirationType),
		Strike:           q.Strike,
		OptionType:       domain.OptionType(q.OptionType),
		Ask:              q.Ask,
		Bid:              q.Bid,
		Mid:              q.Mid,
		Close:            q.Close,
		High:             q.High,
		Last:             q.Last,
		Low:              q.Low,
		Open:             q.Open,
		PreviousClose:    q.PreviousClose,
		ObservedAt:       q.ObservedAt,
	}, nil
}

func fromDomain(r domain.QuoteRecord) quoteJSON {
	q := quoteJSON{
		UnderlyingSymbol: r.UnderlyingSymbol,
		OptionSymbol:     r.OptionSymbol,
		ExpirationDate:   r.ExpirationDate.Format(domain.DateLayout),
		ExpirationType:   string(r.ExpirationType),
		Strike:           r.Strike,
		OptionType:       string(r.OptionType),
		Ask:              r.Ask,
		Bid:              r.Bid,
		Mid:              r.Mid,
		Close:            r.Close,
		High:             r.High,
		Last:             r.Last,
		Low:              r.Low,
		Open:             r.Open,
		PreviousClose:    r.PreviousClose,
		ObservedAt:       r.ObservedAt,
	}
	if !r.CreatedAt.IsZero() {
		t := r.CreatedAt
		q.CreatedAt = &t
	}
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		q.UpdatedAt = &t
	}
	return q
}

func toQuoteJSON(in []domain.QuoteRecord) []quoteJSON {
	out := make([]quoteJSON, 0, len(in))
	for _, r := range in {
		out = append(out, fromDomain(r))
	}
	return out
}
