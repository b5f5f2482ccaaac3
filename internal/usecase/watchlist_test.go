package usecase

import (
	"context"
	"testing"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/analysis"
)

func watchlistFixture() ([]models.Instrument, *fakeStore) {
	instruments := []models.Instrument{
		{Symbol: "AAPL", Name: "Apple", Market: models.MarketUS},
		{Symbol: "00700", Name: "Tencent", Market: models.MarketHK},
		{Symbol: "600519", Name: "Kweichow Moutai", Market: models.MarketCN},
	}
	store := newFakeStore()
	for _, inst := range instruments {
		store.bars[inst.Key()] = risingBars(40)
	}
	return instruments, store
}

func TestRunAllAnalyzesEveryInstrument(t *testing.T) {
	instruments, store := watchlistFixture()
	analyze := NewAnalyzeUseCase(store, &fakeSource{bars: risingBars(40)}, analysis.NewDetector())
	uc := NewWatchlistUseCase(analyze, instruments, WithConcurrency(2))

	batch := uc.RunAll(context.Background(), nil)
	if len(batch.Reports) != 3 {
		t.Fatalf("reports = %d, want 3", len(batch.Reports))
	}
	if batch.Failed != 0 {
		t.Fatalf("failed = %d, want 0", batch.Failed)
	}
	// report order follows watchlist order regardless of goroutine timing
	for i, inst := range instruments {
		if batch.Reports[i].Instrument.Symbol != inst.Symbol {
			t.Fatalf("report[%d] = %s, want %s", i, batch.Reports[i].Instrument.Symbol, inst.Symbol)
		}
	}
}

func TestRunAllOneFailureDoesNotAbortBatch(t *testing.T) {
	instruments, store := watchlistFixture()
	// Tencent has no stored history and the source is down
	delete(store.bars, instruments[1].Key())

	analyze := NewAnalyzeUseCase(store, &fakeSource{err: context.DeadlineExceeded}, analysis.NewDetector())
	uc := NewWatchlistUseCase(analyze, instruments)

	batch := uc.RunAll(context.Background(), nil)
	if batch.Failed != 1 {
		t.Fatalf("failed = %d, want 1", batch.Failed)
	}
	if batch.Reports[1].Error == "" {
		t.Fatal("failing instrument should carry its error")
	}
	if batch.Reports[0].Signal == nil || batch.Reports[2].Signal == nil {
		t.Fatal("healthy instruments should still produce signals")
	}
}

func TestRunAllSymbolFilter(t *testing.T) {
	instruments, store := watchlistFixture()
	analyze := NewAnalyzeUseCase(store, &fakeSource{}, analysis.NewDetector())
	uc := NewWatchlistUseCase(analyze, instruments)

	batch := uc.RunAll(context.Background(), []string{"aapl", "600519"})
	if len(batch.Reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(batch.Reports))
	}
	if batch.Reports[0].Instrument.Symbol != "AAPL" || batch.Reports[1].Instrument.Symbol != "600519" {
		t.Fatalf("unexpected filtered order: %s, %s",
			batch.Reports[0].Instrument.Symbol, batch.Reports[1].Instrument.Symbol)
	}
}

func TestFindIsCaseInsensitive(t *testing.T) {
	instruments, store := watchlistFixture()
	analyze := NewAnalyzeUseCase(store, &fakeSource{}, analysis.NewDetector())
	uc := NewWatchlistUseCase(analyze, instruments)

	inst, ok := uc.Find("aapl")
	if !ok || inst.Symbol != "AAPL" {
		t.Fatalf("Find(aapl) = %v, %v", inst, ok)
	}
	if _, ok := uc.Find("TSLA"); ok {
		t.Fatal("Find(TSLA) should miss")
	}
}
