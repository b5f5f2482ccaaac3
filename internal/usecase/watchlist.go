package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
	applogger "StockPulse/pkg/logger"
)

// WatchlistUseCase fans one analysis run out over the configured
// instruments with bounded concurrency. A single instrument failure is
// recorded in its report and never aborts the batch.
type WatchlistUseCase struct {
	analyze     *AnalyzeUseCase
	instruments []models.Instrument
	concurrency int
	l           *applogger.Logger
}

// WatchlistOption configures WatchlistUseCase.
type WatchlistOption func(*WatchlistUseCase)

func WithConcurrency(n int) WatchlistOption {
	return func(uc *WatchlistUseCase) {
		if n > 0 {
			uc.concurrency = n
		}
	}
}

func WithWatchlistLogger(l *applogger.Logger) WatchlistOption {
	return func(uc *WatchlistUseCase) {
		if l != nil {
			uc.l = l
		}
	}
}

func NewWatchlistUseCase(analyze *AnalyzeUseCase, instruments []models.Instrument, opts ...WatchlistOption) *WatchlistUseCase {
	uc := &WatchlistUseCase{
		analyze:     analyze,
		instruments: instruments,
		concurrency: 4,
		l:           applogger.Nop(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Instruments returns the configured watchlist.
func (uc *WatchlistUseCase) Instruments() []models.Instrument {
	out := make([]models.Instrument, len(uc.instruments))
	copy(out, uc.instruments)
	return out
}

// Find resolves a watchlist instrument by symbol (case-insensitive).
func (uc *WatchlistUseCase) Find(symbol string) (models.Instrument, bool) {
	for _, inst := range uc.instruments {
		if strings.EqualFold(inst.Symbol, symbol) {
			return inst, true
		}
	}
	return models.Instrument{}, false
}

// RunAll analyzes every watchlist instrument, or only the given symbols
// when the filter is non-empty. Report order matches watchlist order.
func (uc *WatchlistUseCase) RunAll(ctx context.Context, symbols []string) *models.BatchReport {
	targets := uc.filter(symbols)
	start := time.Now()

	reports := make([]models.InstrumentReport, len(targets))
	sem := make(chan struct{}, uc.concurrency)
	var wg sync.WaitGroup

	for i, inst := range targets {
		wg.Add(1)
		go func(i int, inst models.Instrument) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			report, err := uc.analyze.Analyze(ctx, inst, true)
			if err != nil {
				uc.l.Error("watchlist instrument failed",
					applogger.String("symbol", inst.Symbol),
					applogger.Error(err),
				)
			}
			reports[i] = report
		}(i, inst)
	}
	wg.Wait()

	failed := 0
	for _, r := range reports {
		if r.Error != "" {
			failed++
		}
	}

	batch := &models.BatchReport{
		StartedAt: start,
		Duration:  time.Since(start),
		Reports:   reports,
		Failed:    failed,
	}
	uc.l.Info("watchlist run complete",
		applogger.Int("instruments", len(targets)),
		applogger.Int("failed", failed),
		applogger.Duration("duration_ms", batch.Duration),
	)
	return batch
}

func (uc *WatchlistUseCase) filter(symbols []string) []models.Instrument {
	if len(symbols) == 0 {
		return uc.instruments
	}
	want := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		want[strings.ToUpper(s)] = struct{}{}
	}
	out := make([]models.Instrument, 0, len(symbols))
	for _, inst := range uc.instruments {
		if _, ok := want[strings.ToUpper(inst.Symbol)]; ok {
			out = append(out, inst)
		}
	}
	return out
}
