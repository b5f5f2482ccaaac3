package analysis

import (
	"context"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

type stubNews struct {
	items []models.NewsItem
	calls int
}

func (s *stubNews) Lookup(_ context.Context, _ models.Instrument, _ time.Time) []models.NewsItem {
	s.calls++
	return s.items
}

var testInst = models.Instrument{Symbol: "600519", Name: "Kweichow Moutai", Market: models.MarketCN}

func TestDetectSurge(t *testing.T) {
	news := &stubNews{items: []models.NewsItem{{Title: "earnings beat", Source: "rss"}}}
	d := NewDetector(WithNewsProvider(news))
	bars := mkBars([]float64{100, 106})

	got, err := d.Detect(context.Background(), testInst, bars)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got == nil {
		t.Fatalf("expected a report for a 6%% move")
	}
	if got.Direction != models.AnomalySurge {
		t.Fatalf("direction = %q", got.Direction)
	}
	if got.ChangePct != 6.00 {
		t.Fatalf("change = %v, want 6.00", got.ChangePct)
	}
	if got.Date != bars[1].Date.Format("2006-01-02") {
		t.Fatalf("date = %q", got.Date)
	}
	if got.Symbol != testInst.Symbol || got.Market != testInst.Market {
		t.Fatalf("instrument fields not carried: %+v", got)
	}
	if news.calls != 1 || len(got.News) != 1 {
		t.Fatalf("news lookup not wired: calls=%d items=%d", news.calls, len(got.News))
	}
}

func TestDetectPlunge(t *testing.T) {
	d := NewDetector()
	got, err := d.Detect(context.Background(), testInst, mkBars([]float64{100, 94}))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got == nil || got.Direction != models.AnomalyPlunge {
		t.Fatalf("report = %+v, want plunge", got)
	}
	if got.ChangePct != -6.00 {
		t.Fatalf("change = %v, want -6.00", got.ChangePct)
	}
	if got.News == nil {
		t.Fatalf("news must be an empty list, not nil, without a provider")
	}
}

func TestDetectBelowThreshold(t *testing.T) {
	d := NewDetector()
	got, err := d.Detect(context.Background(), testInst, mkBars([]float64{100, 103}))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got != nil {
		t.Fatalf("3%% move must not be flagged, got %+v", got)
	}
}

func TestDetectCustomThreshold(t *testing.T) {
	d := NewDetector(WithThreshold(0.03))
	got, err := d.Detect(context.Background(), testInst, mkBars([]float64{100, 104}))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got == nil {
		t.Fatalf("4%% move must be flagged at a 3%% threshold")
	}
}

func TestDetectGuards(t *testing.T) {
	d := NewDetector()
	for name, bars := range map[string][]models.Bar{
		"empty":     nil,
		"single":    mkBars([]float64{100}),
		"zero prev": mkBars([]float64{0, 100}),
	} {
		got, err := d.Detect(context.Background(), testInst, bars)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", name, err)
		}
		if got != nil {
			t.Fatalf("%s: report = %+v, want nil", name, got)
		}
	}
}

func TestDetectRoundsPrices(t *testing.T) {
	d := NewDetector()
	bars := mkBars([]float64{100.12345, 110.98765})
	got, err := d.Detect(context.Background(), testInst, bars)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got.Close != 110.988 || got.PrevClose != 100.123 {
		t.Fatalf("prices = %v / %v, want rounded to 3 decimals", got.Close, got.PrevClose)
	}
}
