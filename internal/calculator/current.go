package calculator

import (
	"errors"
	"time"

	"PowerPrice/internal/model"
)

// ErrNoPastPricePoint is returned when no point lies strictly before now.
var ErrNoPastPricePoint = errors.New("no price point before now")

// PriceAt returns the latest point whose time is strictly before now.
// The series does not need to be sorted.
func PriceAt(series model.PriceSeries, now time.Time) (model.PricePoint, error) {
	var (
		best  model.PricePoint
		found bool
	)
	for _, p := range series {
		if !p.Time.Before(now) {
			continue
		}
		if !found || p.Time.After(best.Time) {
			best = p
			found = true
		}
	}
	if !found {
		return model.PricePoint{}, ErrNoPastPricePoint
	}
	return best, nil
}
