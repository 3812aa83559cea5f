// Package pipeline runs one forecast-and-publish cycle.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"PowerPrice/internal/calculator"
	"PowerPrice/internal/model"
	"PowerPrice/internal/publisher"
)

// Fetcher returns the priced day-ahead series for several zones.
// *pricing.Aggregator satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, zones []model.PriceZone, supplier string, today time.Time) (model.PriceSeries, error)
}

// Settings are the per-run parameters taken from config.
type Settings struct {
	Zones       []model.PriceZone
	Supplier    string
	PublishZone model.PriceZone
	Topic       string
	Location    *time.Location
}

// Pipeline fetches prices, derives the current and mean price and publishes them.
type Pipeline struct {
	fetcher  Fetcher
	sink     publisher.Sink
	settings Settings
	log      *slog.Logger
}

// New creates a Pipeline. PublishZone defaults to the first zone and Location to UTC.
func New(fetcher Fetcher, sink publisher.Sink, settings Settings, log *slog.Logger) *Pipeline {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.PublishZone == "" && len(settings.Zones) > 0 {
		settings.PublishZone = settings.Zones[0]
	}
	return &Pipeline{fetcher: fetcher, sink: sink, settings: settings, log: log}
}

// Run executes one cycle. Nothing is published unless every step before the
// publish succeeds.
func (p *Pipeline) Run(ctx context.Context, now time.Time) error {
	s := p.settings
	series, err := p.fetcher.Fetch(ctx, s.Zones, s.Supplier, now)
	if err != nil {
		return fmt.Errorf("fetch day-ahead prices: %w", err)
	}

	selected := series.ForZone(s.PublishZone)
	p.log.Debug("series fetched", "points", len(series), "zone", s.PublishZone, "zone_points", len(selected))

	mean, err := calculator.Mean(selected)
	if err != nil {
		return fmt.Errorf("mean price for %s: %w", s.PublishZone, err)
	}
	current, err := calculator.PriceAt(selected, now)
	if err != nil {
		return fmt.Errorf("current price for %s: %w", s.PublishZone, err)
	}

	payload := publisher.FormatPayload(now.In(s.Location), current.Price, mean)
	p.log.Info("publishing price",
		"topic", s.Topic,
		"ts", payload.TS,
		"price_now", payload.PriceNow,
		"price_mean", payload.PriceMean,
		"price_below_mean", payload.PriceBelowMean)

	body, err := publisher.Encode(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := p.sink.Publish(ctx, s.Topic, body); err != nil {
		return err
	}
	return nil
}
