// Package store keeps the last conversion rate between process runs so the
// staleness window holds when the binary is invoked from an external scheduler.
package store

import (
	"context"

	"PowerPrice/internal/model"
)

// RateStore persists the latest conversion rate per currency pair.
// LoadRate returns (nil, nil) when nothing is stored.
type RateStore interface {
	LoadRate(ctx context.Context, pair string) (*model.ConversionRate, error)
	SaveRate(ctx context.Context, pair string, rate model.ConversionRate) error
	Close() error
}
