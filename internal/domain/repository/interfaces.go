package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// BarStore persists daily bars per instrument. Upsert must be idempotent:
// re-inserting an existing (instrument, date) replaces the row.
type BarStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	UpsertBars(ctx context.Context, inst models.Instrument, bars []models.Bar) error
	// GetBars returns the full stored history, date-ascending, deduplicated.
	GetBars(ctx context.Context, inst models.Instrument) ([]models.Bar, error)
	// LastDate returns the most recent stored bar date, ok=false when empty.
	LastDate(ctx context.Context, inst models.Instrument) (time.Time, bool, error)
	Health(ctx context.Context) error
	Close() error
}

// AlertPublisher emits signal and anomaly events to downstream consumers.
type AlertPublisher interface {
	PublishSignal(ctx context.Context, inst models.Instrument, sig *models.SignalResult) error
	PublishAnomaly(ctx context.Context, a *models.AnomalyReport) error
	Close() error
}

// Metrics records operational counters for the analysis service.
type Metrics interface {
	RecordAnalysis(symbol string, ok bool)
	RecordAnomaly(symbol string)
	RecordNewsError(source string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
