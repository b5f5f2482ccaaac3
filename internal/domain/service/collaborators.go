package service

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// NewsProvider looks up headlines around an anomaly date. Implementations
// must never fail: a source error becomes a placeholder NewsItem describing
// the failure, so anomaly detection is never blocked by news unavailability.
type NewsProvider interface {
	Lookup(ctx context.Context, inst models.Instrument, date time.Time) []models.NewsItem
}

// CandleSource fetches daily bars from an upstream market-data provider.
type CandleSource interface {
	FetchDaily(ctx context.Context, inst models.Instrument, days int) ([]models.Bar, error)
}
