package wholesale

import (
	"context"
	"time"

	"PowerPrice/internal/model"
)

// Fetcher defines the interface for fetching day-ahead wholesale prices.
// Points are hourly, ascending, within [start, end), priced per MWh in the
// provider's currency.
type Fetcher interface {
	FetchDayAhead(ctx context.Context, zone model.PriceZone, start, end time.Time) ([]model.RawPoint, error)
	Name() string
}
