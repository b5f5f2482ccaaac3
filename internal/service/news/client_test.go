package news

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

type fakeSource struct {
	name  string
	items []models.NewsItem
	err   error
	delay time.Duration
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(ctx context.Context, _ string) ([]models.NewsItem, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.items, f.err
}

var newsInst = models.Instrument{Symbol: "AAPL", Name: "Apple", Market: models.MarketUS}

func TestLookupMergesAndDedupes(t *testing.T) {
	p := NewProvider([]Source{
		&fakeSource{name: "a", items: []models.NewsItem{
			{Title: "Apple beats estimates", Source: "a"},
			{Title: "Second story", Source: "a"},
		}},
		&fakeSource{name: "b", items: []models.NewsItem{
			{Title: "Apple beats estimates", Source: "b"}, // duplicate title
			{Title: "Third story", Source: "b"},
		}},
	})

	got := p.Lookup(context.Background(), newsInst, time.Now())
	if len(got) != 3 {
		t.Fatalf("got %d items, want 3 after dedup", len(got))
	}
	if got[0].Source != "a" {
		t.Fatalf("duplicate must keep the first source, got %q", got[0].Source)
	}
}

func TestLookupNeverFails(t *testing.T) {
	p := NewProvider([]Source{
		&fakeSource{name: "broken", err: errors.New("boom")},
		&fakeSource{name: "ok", items: []models.NewsItem{{Title: "fine", Source: "ok"}}},
	})

	got := p.Lookup(context.Background(), newsInst, time.Now())
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2 (placeholder + real)", len(got))
	}
	var placeholder *models.NewsItem
	for i := range got {
		if got[i].Source == "broken" {
			placeholder = &got[i]
		}
	}
	if placeholder == nil {
		t.Fatalf("no placeholder for the failed source: %+v", got)
	}
	if !strings.Contains(placeholder.Title, "search failed") {
		t.Fatalf("placeholder title = %q", placeholder.Title)
	}
}

func TestLookupEnforcesSourceTimeout(t *testing.T) {
	p := NewProvider([]Source{
		&fakeSource{name: "slow", delay: time.Second, items: []models.NewsItem{{Title: "late"}}},
	}, WithSourceTimeout(20*time.Millisecond))

	start := time.Now()
	got := p.Lookup(context.Background(), newsInst, time.Now())
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("lookup took %v, timeout not applied", elapsed)
	}
	if len(got) != 1 || !strings.Contains(got[0].Title, "search failed") {
		t.Fatalf("expected timeout placeholder, got %+v", got)
	}
}

func TestBuildQuery(t *testing.T) {
	if q := buildQuery("AAPL", "Apple"); q != `"AAPL" OR "Apple"` {
		t.Fatalf("got %q", q)
	}
	if q := buildQuery("AAPL", "AAPL"); q != `"AAPL"` {
		t.Fatalf("got %q", q)
	}
	if q := buildQuery("AAPL", ""); q != `"AAPL"` {
		t.Fatalf("got %q", q)
	}
}
