package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExpirationType string

const (
	ExpirationWeekly  ExpirationType = "weekly"
	ExpirationMonthly ExpirationType = "monthly"
)

func (t ExpirationType) Valid() bool {
	return t == ExpirationWeekly || t == ExpirationMonthly
}

type OptionType string

const (
	OptionPut  OptionType = "put"
	OptionCall OptionType = "call"
)

func (t OptionType) Valid() bool {
	return t == OptionPut || t == OptionCall
}

// QuoteRecord is one observed snapshot of a single option contract.
// OptionSymbol is the identity key; price fields are absent when upstream omits them.
type QuoteRecord struct {
	UnderlyingSymbol string
	OptionSymbol     string
	ExpirationDate   time.Time
	ExpirationType   ExpirationType
	Strike           decimal.Decimal
	OptionType       OptionType

	Ask           decimal.NullDecimal
	Bid           decimal.NullDecimal
	Mid           decimal.NullDecimal
	Close         decimal.NullDecimal
	High          decimal.NullDecimal
	Last          decimal.NullDecimal
	Low           decimal.NullDecimal
	Open          decimal.NullDecimal
	PreviousClose decimal.NullDecimal

	ObservedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Price is a small helper for building optional price fields.
func Price(v float64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(v), Valid: true}
}
