package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/analysis"
)

type fakeStore struct {
	mu      sync.Mutex
	bars    map[string][]models.Bar
	getErr  error
	upserts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{bars: make(map[string][]models.Bar)}
}

func (s *fakeStore) Init(ctx context.Context) error { return nil }

func (s *fakeStore) UpsertBars(ctx context.Context, inst models.Instrument, bars []models.Bar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	s.bars[inst.Key()] = bars
	return nil
}

func (s *fakeStore) GetBars(ctx context.Context, inst models.Instrument) ([]models.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.bars[inst.Key()], nil
}

func (s *fakeStore) LastDate(ctx context.Context, inst models.Instrument) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bs := s.bars[inst.Key()]
	if len(bs) == 0 {
		return time.Time{}, false, nil
	}
	return bs[len(bs)-1].Date, true, nil
}

func (s *fakeStore) Health(ctx context.Context) error { return nil }
func (s *fakeStore) Close() error                     { return nil }

type fakeSource struct {
	bars    []models.Bar
	err     error
	gotDays int
}

func (f *fakeSource) FetchDaily(ctx context.Context, inst models.Instrument, days int) ([]models.Bar, error) {
	f.gotDays = days
	return f.bars, f.err
}

type fakePublisher struct {
	mu        sync.Mutex
	signals   int
	anomalies int
}

func (p *fakePublisher) PublishSignal(ctx context.Context, inst models.Instrument, sig *models.SignalResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signals++
	return nil
}

func (p *fakePublisher) PublishAnomaly(ctx context.Context, a *models.AnomalyReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.anomalies++
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	mu        sync.Mutex
	analyses  int
	failures  int
	anomalies int
	errors    map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errors: make(map[string]int)}
}

func (m *fakeMetrics) RecordAnalysis(symbol string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses++
	if !ok {
		m.failures++
	}
}

func (m *fakeMetrics) RecordAnomaly(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anomalies++
}

func (m *fakeMetrics) RecordNewsError(source string) {}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordLatency(op string, seconds float64) {}

func risingBars(n int) []models.Bar {
	out := make([]models.Bar, n)
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range out {
		c := 100 + float64(i)
		out[i] = models.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return out
}

var testInstrument = models.Instrument{Symbol: "AAPL", Name: "Apple", Market: models.MarketUS}

func TestAnalyzeFromStoredHistory(t *testing.T) {
	store := newFakeStore()
	store.bars[testInstrument.Key()] = risingBars(40)

	uc := NewAnalyzeUseCase(store, &fakeSource{}, analysis.NewDetector())
	report, err := uc.Analyze(context.Background(), testInstrument, false)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Bars != 40 {
		t.Fatalf("bars = %d, want 40", report.Bars)
	}
	if report.Signal == nil {
		t.Fatal("expected a signal")
	}
	if report.Signal.Label == models.SignalInsufficientData {
		t.Fatalf("unexpected label %s", report.Signal.Label)
	}
}

func TestAnalyzeRefreshStoresFetchedBars(t *testing.T) {
	store := newFakeStore()
	source := &fakeSource{bars: risingBars(40)}

	uc := NewAnalyzeUseCase(store, source, analysis.NewDetector())
	report, err := uc.Analyze(context.Background(), testInstrument, true)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if store.upserts != 1 {
		t.Fatalf("upserts = %d, want 1", store.upserts)
	}
	if report.Bars != 40 {
		t.Fatalf("bars = %d, want 40", report.Bars)
	}
}

func TestAnalyzeRefreshIsIncremental(t *testing.T) {
	store := newFakeStore()
	bars := risingBars(40)
	// pin the last stored bar to ~3 days ago so the gap is small
	bars[len(bars)-1].Date = time.Now().AddDate(0, 0, -3)
	store.bars[testInstrument.Key()] = bars
	source := &fakeSource{bars: bars}

	uc := NewAnalyzeUseCase(store, source, analysis.NewDetector(), WithHistoryDays(365))
	if _, err := uc.Analyze(context.Background(), testInstrument, true); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if source.gotDays >= 365 {
		t.Fatalf("fetch window = %d days, want the gap since the last stored date", source.gotDays)
	}
	if source.gotDays < 3 {
		t.Fatalf("fetch window = %d days, must cover the gap", source.gotDays)
	}
}

func TestAnalyzeRefreshFailureFallsBackToStore(t *testing.T) {
	store := newFakeStore()
	store.bars[testInstrument.Key()] = risingBars(40)
	source := &fakeSource{err: errors.New("provider down")}
	metrics := newFakeMetrics()

	uc := NewAnalyzeUseCase(store, source, analysis.NewDetector(), WithMetrics(metrics))
	report, err := uc.Analyze(context.Background(), testInstrument, true)
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if report.Signal == nil {
		t.Fatal("expected a signal from stored history")
	}
	if metrics.errors["refresh"] != 1 {
		t.Fatalf("refresh errors = %d, want 1", metrics.errors["refresh"])
	}
}

func TestAnalyzeEmptyStoreFails(t *testing.T) {
	store := newFakeStore()
	source := &fakeSource{err: errors.New("provider down")}
	metrics := newFakeMetrics()

	uc := NewAnalyzeUseCase(store, source, analysis.NewDetector(), WithMetrics(metrics))
	report, err := uc.Analyze(context.Background(), testInstrument, true)
	if err == nil {
		t.Fatal("expected an error with no history anywhere")
	}
	if report.Error == "" {
		t.Fatal("report should carry the error")
	}
	if metrics.failures != 1 {
		t.Fatalf("recorded failures = %d, want 1", metrics.failures)
	}
}

func TestAnalyzePublishesSignalAndAnomaly(t *testing.T) {
	bars := risingBars(40)
	// last close jumps 10% over the previous one
	bars[len(bars)-1].Close = bars[len(bars)-2].Close * 1.10

	store := newFakeStore()
	store.bars[testInstrument.Key()] = bars
	pub := &fakePublisher{}
	metrics := newFakeMetrics()

	uc := NewAnalyzeUseCase(store, &fakeSource{}, analysis.NewDetector(),
		WithAlertPublisher(pub), WithMetrics(metrics))
	report, err := uc.Analyze(context.Background(), testInstrument, false)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Anomaly == nil {
		t.Fatal("expected an anomaly report for a 10% jump")
	}
	if report.Anomaly.Direction != models.AnomalySurge {
		t.Fatalf("direction = %s, want surge", report.Anomaly.Direction)
	}
	if pub.signals != 1 || pub.anomalies != 1 {
		t.Fatalf("published signals=%d anomalies=%d, want 1/1", pub.signals, pub.anomalies)
	}
	if metrics.anomalies != 1 {
		t.Fatalf("recorded anomalies = %d, want 1", metrics.anomalies)
	}
}

func TestCheckAnomalyThresholdOverride(t *testing.T) {
	bars := risingBars(10)
	// 4% move: below the 5% default, above a 3% override
	bars[len(bars)-1].Close = bars[len(bars)-2].Close * 1.04

	store := newFakeStore()
	store.bars[testInstrument.Key()] = bars
	uc := NewAnalyzeUseCase(store, &fakeSource{}, analysis.NewDetector())

	report, err := uc.CheckAnomaly(context.Background(), testInstrument, 0)
	if err != nil {
		t.Fatalf("CheckAnomaly: %v", err)
	}
	if report != nil {
		t.Fatal("4% move should not trip the default threshold")
	}

	report, err = uc.CheckAnomaly(context.Background(), testInstrument, 0.03)
	if err != nil {
		t.Fatalf("CheckAnomaly override: %v", err)
	}
	if report == nil {
		t.Fatal("4% move should trip a 3% threshold")
	}
}
