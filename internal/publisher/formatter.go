package publisher

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"PowerPrice/internal/model"
)

// TimestampLayout is ISO-8601 with the zone offset, e.g. 2024-03-01T12:30:00.123+01:00.
const TimestampLayout = "2006-01-02T15:04:05.999999-07:00"

// FormatPayload builds the published message. Equal to the mean is not below it.
func FormatPayload(now time.Time, priceNow, priceMean decimal.Decimal) model.Payload {
	return model.Payload{
		TS:             now.Format(TimestampLayout),
		PriceNow:       priceNow.InexactFloat64(),
		PriceMean:      priceMean.InexactFloat64(),
		PriceBelowMean: strconv.FormatBool(priceNow.LessThan(priceMean)),
	}
}

// Encode serializes a payload as JSON.
func Encode(p model.Payload) ([]byte, error) {
	return json.Marshal(p)
}
