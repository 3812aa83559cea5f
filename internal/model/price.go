package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceZone is a bidding-zone code such as "NO_2".
type PriceZone string

// RawPoint is a wholesale price in the provider's native currency per MWh.
type RawPoint struct {
	Time  time.Time
	Price decimal.Decimal
}

// PricePoint is a retail price: converted, marked up and taxed.
type PricePoint struct {
	Time  time.Time
	Price decimal.Decimal
	Zone  PriceZone
}

// PriceSeries holds hourly price points for one or more zones.
// Within a zone the points are strictly increasing in time.
type PriceSeries []PricePoint

// ForZone returns the sub-series for zone, preserving order.
func (s PriceSeries) ForZone(zone PriceZone) PriceSeries {
	out := make(PriceSeries, 0, len(s))
	for _, p := range s {
		if p.Zone == zone {
			out = append(out, p)
		}
	}
	return out
}

// Zones lists the zones present in order of first appearance.
func (s PriceSeries) Zones() []PriceZone {
	var zones []PriceZone
	seen := make(map[PriceZone]bool)
	for _, p := range s {
		if !seen[p.Zone] {
			seen[p.Zone] = true
			zones = append(zones, p.Zone)
		}
	}
	return zones
}

// Prices extracts the price column.
func (s PriceSeries) Prices() []decimal.Decimal {
	prices := make([]decimal.Decimal, len(s))
	for i, p := range s {
		prices[i] = p.Price
	}
	return prices
}
