package pricing

import (
	"context"
	"time"

	"PowerPrice/internal/model"
)

// Pricer prices a single zone; *ZonePricer satisfies it.
type Pricer interface {
	Price(ctx context.Context, zone model.PriceZone, start, end time.Time, supplier string, now time.Time) (model.PriceSeries, error)
}

// Aggregator orchestrates day-ahead fetching over several zones.
type Aggregator struct {
	Pricer      Pricer
	Location    *time.Location
	HorizonDays int
}

// NewAggregator creates a new Aggregator covering horizonDays from local midnight.
func NewAggregator(pricer Pricer, loc *time.Location, horizonDays int) *Aggregator {
	return &Aggregator{Pricer: pricer, Location: loc, HorizonDays: horizonDays}
}

// Window returns local midnight of today and the end of the horizon.
func (a *Aggregator) Window(today time.Time) (start, end time.Time) {
	local := today.In(a.Location)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, a.Location)
	return start, start.AddDate(0, 0, a.HorizonDays)
}

// Fetch prices every zone in order and concatenates the results. Zones are not merged.
// today is also the instant the conversion rate must be valid at.
func (a *Aggregator) Fetch(ctx context.Context, zones []model.PriceZone, supplier string, today time.Time) (model.PriceSeries, error) {
	start, end := a.Window(today)

	combined := model.PriceSeries{}
	for _, zone := range zones {
		series, err := a.Pricer.Price(ctx, zone, start, end, supplier, today)
		if err != nil {
			return nil, err
		}
		combined = append(combined, series...)
	}
	return combined, nil
}
