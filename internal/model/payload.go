package model

// Payload is the message published on the price topic.
type Payload struct {
	TS             string  `json:"ts"`
	PriceNow       float64 `json:"price_now"`
	PriceMean      float64 `json:"price_mean"`
	PriceBelowMean string  `json:"price_below_mean"` // "true" or "false"
}
