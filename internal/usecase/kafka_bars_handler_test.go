package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"StockPulse/internal/domain/models"
)

func TestBarsIngestUpserts(t *testing.T) {
	store := newFakeStore()
	h := NewBarsIngestHandler("stockpulse.bars", store)

	event := barEvent{
		Symbol: "AAPL",
		Name:   "Apple",
		Market: models.MarketUS,
		Bars:   risingBars(5),
	}
	data, _ := json.Marshal(event)
	if err := h.Handle(context.Background(), data); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	bars := store.bars[testInstrument.Key()]
	if len(bars) != 5 {
		t.Fatalf("stored %d bars, want 5", len(bars))
	}
}

func TestBarsIngestDropsBadPayloads(t *testing.T) {
	store := newFakeStore()
	h := NewBarsIngestHandler("stockpulse.bars", store)

	cases := [][]byte{
		[]byte("not json"),
		[]byte(`{"symbol":"","market":"US","bars":[]}`),
		[]byte(`{"symbol":"AAPL","market":"XX","bars":[{"close":1}]}`),
	}
	for _, data := range cases {
		if err := h.Handle(context.Background(), data); err != nil {
			t.Fatalf("bad payload should be dropped without error: %v", err)
		}
	}
	if store.upserts != 0 {
		t.Fatalf("upserts = %d, want 0", store.upserts)
	}
}
