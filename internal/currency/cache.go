package currency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"PowerPrice/internal/model"
	"PowerPrice/internal/store"
)

// ErrConversionUnavailable means no rate could be fetched and none is cached.
var ErrConversionUnavailable = errors.New("conversion rate unavailable")

// Cache holds the conversion rate and refreshes it once it is older than MaxAge.
// The lock is held across the refresh so concurrent callers trigger a single fetch.
type Cache struct {
	mu      sync.Mutex
	fetcher RateFetcher
	store   store.RateStore
	source  string
	target  string
	maxAge  time.Duration
	log     *slog.Logger

	rate   *model.ConversionRate
	seeded bool
}

// NewCache creates a cache for source→target. A nil store keeps the rate in memory only.
func NewCache(fetcher RateFetcher, st store.RateStore, source, target string, maxAge time.Duration, log *slog.Logger) *Cache {
	if st == nil {
		st = store.NewNoopStore()
	}
	return &Cache{
		fetcher: fetcher,
		store:   st,
		source:  strings.ToUpper(source),
		target:  strings.ToUpper(target),
		maxAge:  maxAge,
		log:     log,
	}
}

// Pair is the store key, e.g. "EUR/NOK".
func (c *Cache) Pair() string { return c.source + "/" + c.target }

// Get returns a rate no older than MaxAge when the provider is reachable.
// On provider failure the previous rate is returned, however old.
func (c *Cache) Get(ctx context.Context, now time.Time) (model.ConversionRate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seed(ctx)

	if c.fresh(now) {
		return *c.rate, nil
	}

	value, err := c.fetcher.FetchRate(ctx, c.source, c.target)
	if err != nil {
		if c.rate != nil {
			c.log.Warn("could not refresh conversion rate, using cached value",
				"pair", c.Pair(), "rate", c.rate.Rate, "fetched_at", c.rate.FetchedAt, "err", err)
			return *c.rate, nil
		}
		c.log.Error("could not get conversion rate", "pair", c.Pair(), "err", err)
		return model.ConversionRate{}, fmt.Errorf("%w: %v", ErrConversionUnavailable, err)
	}

	fresh := model.ConversionRate{Rate: value, FetchedAt: now}
	c.rate = &fresh
	c.log.Info("conversion rate refreshed", "pair", c.Pair(), "rate", value, "source", c.fetcher.Name())

	if err := c.store.SaveRate(ctx, c.Pair(), fresh); err != nil {
		c.log.Warn("persist conversion rate failed", "pair", c.Pair(), "err", err)
	}
	return fresh, nil
}

// fresh reports whether the held rate is usable at now. A rate stamped after
// now (clock moved back, bad store row) is stale.
func (c *Cache) fresh(now time.Time) bool {
	if c.rate == nil || now.Before(c.rate.FetchedAt) {
		return false
	}
	return now.Sub(c.rate.FetchedAt) < c.maxAge
}

// seed loads the persisted rate once per process.
func (c *Cache) seed(ctx context.Context) {
	if c.seeded {
		return
	}
	c.seeded = true
	stored, err := c.store.LoadRate(ctx, c.Pair())
	if err != nil {
		c.log.Warn("load persisted conversion rate failed", "pair", c.Pair(), "err", err)
		return
	}
	if stored != nil && stored.Rate.IsPositive() {
		c.rate = stored
		c.log.Debug("conversion rate restored", "pair", c.Pair(), "rate", stored.Rate, "fetched_at", stored.FetchedAt)
	}
}
