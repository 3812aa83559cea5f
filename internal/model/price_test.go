package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPriceSeries_ForZoneAndZones(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := PriceSeries{
		{Time: t0, Price: decimal.NewFromInt(1), Zone: "NO_2"},
		{Time: t0.Add(time.Hour), Price: decimal.NewFromInt(2), Zone: "NO_2"},
		{Time: t0, Price: decimal.NewFromInt(3), Zone: "NO_1"},
	}

	assert.Equal(t, []PriceZone{"NO_2", "NO_1"}, s.Zones())

	no2 := s.ForZone("NO_2")
	assert.Len(t, no2, 2)
	assert.True(t, no2[1].Price.Equal(decimal.NewFromInt(2)))

	assert.Empty(t, s.ForZone("SE_3"))
	assert.Len(t, s.Prices(), 3)
}
