package models

import "time"

// Bar is one daily OHLCV observation. Bars are immutable once loaded;
// the analysis pipeline never mutates them.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Market identifies the listing venue of an instrument.
type Market string

const (
	MarketCN Market = "A"  // mainland A-shares
	MarketUS Market = "US" // US equities
	MarketHK Market = "HK" // Hong Kong
)

// Instrument is one watchlist entry.
type Instrument struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name" yaml:"name"`
	Market Market `json:"market" yaml:"market"`
}

// Key returns the storage/cache key for an instrument.
func (i Instrument) Key() string {
	return string(i.Market) + ":" + i.Symbol
}
