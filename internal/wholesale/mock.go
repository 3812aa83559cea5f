package wholesale

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"PowerPrice/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price decimal.Decimal
	Data  map[model.PriceZone][]model.RawPoint
	Err   error
	Calls []model.PriceZone
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDayAhead(_ context.Context, zone model.PriceZone, start, end time.Time) ([]model.RawPoint, error) {
	m.Calls = append(m.Calls, zone)
	if m.Err != nil {
		return nil, m.Err
	}
	if data, ok := m.Data[zone]; ok {
		return data, nil
	}
	return FlatHourly(start, end, m.Price), nil
}

// FlatHourly generates one point per hour in [start, end) at a constant price.
func FlatHourly(start, end time.Time, price decimal.Decimal) []model.RawPoint {
	var points []model.RawPoint
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		points = append(points, model.RawPoint{Time: t, Price: price})
	}
	return points
}
