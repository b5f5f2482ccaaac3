package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	applogger "StockPulse/pkg/logger"
)

// barEvent is the ingest payload carried on the bars topic. External
// collectors push daily candles here instead of going through HTTP.
type barEvent struct {
	Symbol string        `json:"symbol"`
	Name   string        `json:"name"`
	Market models.Market `json:"market"`
	Bars   []models.Bar  `json:"bars"`
}

// BarsIngestHandler consumes bar events and upserts them into the store.
// It implements kafka.MessageHandler.
type BarsIngestHandler struct {
	topic string
	store domrepo.BarStore
	l     *applogger.Logger
}

func NewBarsIngestHandler(topic string, store domrepo.BarStore) *BarsIngestHandler {
	return &BarsIngestHandler{topic: topic, store: store, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (h *BarsIngestHandler) SetLogger(l *applogger.Logger) {
	if l != nil {
		h.l = l
	}
}

func (h *BarsIngestHandler) Topic() string { return h.topic }

func (h *BarsIngestHandler) Handle(ctx context.Context, data []byte) error {
	var event barEvent
	if err := json.Unmarshal(data, &event); err != nil {
		// malformed payloads are dropped, retrying cannot fix them
		h.l.Warn("bars ingest: malformed event dropped", applogger.Error(err))
		return nil
	}
	if event.Symbol == "" || len(event.Bars) == 0 {
		return nil
	}
	switch event.Market {
	case models.MarketCN, models.MarketUS, models.MarketHK:
	default:
		h.l.Warn("bars ingest: unknown market dropped",
			applogger.String("symbol", event.Symbol),
			applogger.String("market", string(event.Market)),
		)
		return nil
	}

	inst := models.Instrument{Symbol: event.Symbol, Name: event.Name, Market: event.Market}
	if err := h.store.UpsertBars(ctx, inst, event.Bars); err != nil {
		return fmt.Errorf("bars ingest upsert %s: %w", inst.Key(), err)
	}
	h.l.Info("bars ingest: upserted",
		applogger.String("symbol", event.Symbol),
		applogger.Int("rows", len(event.Bars)),
	)
	return nil
}
