package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"PowerPrice/internal/currency"
	"PowerPrice/internal/model"
	"PowerPrice/internal/wholesale"
)

// ErrWholesaleFetch wraps any failure of the wholesale provider.
var ErrWholesaleFetch = errors.New("wholesale fetch failed")

// RateSource yields the conversion rate valid at now.
type RateSource interface {
	Get(ctx context.Context, now time.Time) (model.ConversionRate, error)
}

// ZonePricer produces retail prices for a single zone.
type ZonePricer struct {
	fetcher wholesale.Fetcher
	rates   RateSource
	tariff  Tariff
	log     *slog.Logger
}

// NewZonePricer creates a ZonePricer.
func NewZonePricer(fetcher wholesale.Fetcher, rates RateSource, tariff Tariff, log *slog.Logger) *ZonePricer {
	return &ZonePricer{
		fetcher: fetcher,
		rates:   rates,
		tariff:  tariff,
		log:     log,
	}
}

// Price fetches [start, end) for zone and returns retail prices in provider order.
// The conversion rate is the one valid at now.
func (p *ZonePricer) Price(ctx context.Context, zone model.PriceZone, start, end time.Time, supplier string, now time.Time) (model.PriceSeries, error) {
	raw, err := p.fetcher.FetchDayAhead(ctx, zone, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %s from %s: %v", ErrWholesaleFetch, zone, p.fetcher.Name(), err)
	}

	rate := decimal.NewFromInt(1)
	conv, err := p.rates.Get(ctx, now)
	switch {
	case err == nil:
		rate = conv.Rate
	case errors.Is(err, currency.ErrConversionUnavailable):
		p.log.Warn("no conversion rate, prices stay in wholesale currency", "zone", zone, "err", err)
	default:
		return nil, fmt.Errorf("conversion rate: %w", err)
	}

	markup := p.tariff.Markup(supplier)
	if !markup.Applied {
		p.log.Info(markup.String(), "zone", zone)
	}

	series := make(model.PriceSeries, len(raw))
	for i, r := range raw {
		series[i] = model.PricePoint{
			Time:  r.Time,
			Price: p.tariff.Retail(r.Price, rate, markup),
			Zone:  zone,
		}
	}

	p.log.Debug("zone priced", "zone", zone, "points", len(series), "rate", rate, "supplier", supplier)
	return series, nil
}
