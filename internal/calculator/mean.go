package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"PowerPrice/internal/model"
)

// ErrEmptySeries is returned when there is nothing to average.
var ErrEmptySeries = errors.New("empty price series")

// CalculateMean returns the arithmetic mean of the given prices.
func CalculateMean(prices []decimal.Decimal) (decimal.Decimal, error) {
	if len(prices) == 0 {
		return decimal.Zero, ErrEmptySeries
	}
	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(p)
	}
	return sum.Div(decimal.NewFromInt(int64(len(prices)))), nil
}

// Mean returns the mean price over every point of the series.
func Mean(series model.PriceSeries) (decimal.Decimal, error) {
	return CalculateMean(series.Prices())
}
