package currency

import (
	"context"

	"github.com/shopspring/decimal"
)

// RateFetcher returns the spot rate for converting source into target.
type RateFetcher interface {
	FetchRate(ctx context.Context, source, target string) (decimal.Decimal, error)
	Name() string
}
