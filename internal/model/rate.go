package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionRate converts the wholesale currency into the retail currency.
type ConversionRate struct {
	Rate      decimal.Decimal `json:"rate"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// IsZero reports whether the rate was never set.
func (r ConversionRate) IsZero() bool {
	return r.FetchedAt.IsZero() && r.Rate.IsZero()
}
