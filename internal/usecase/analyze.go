package usecase

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	domservice "StockPulse/internal/domain/service"
	"StockPulse/internal/services/analysis"
	applogger "StockPulse/pkg/logger"
)

// AnalyzeUseCase runs the per-instrument pipeline: refresh history from
// the candle source, store it, compute indicators, fuse the signal and
// check for a price anomaly.
type AnalyzeUseCase struct {
	store    domrepo.BarStore
	source   domservice.CandleSource
	detector *analysis.Detector
	params   analysis.Params
	thres    analysis.Thresholds

	publisher domrepo.AlertPublisher // optional
	metrics   domrepo.Metrics        // optional

	historyDays int
	l           *applogger.Logger
}

// AnalyzeOption configures AnalyzeUseCase.
type AnalyzeOption func(*AnalyzeUseCase)

func WithAlertPublisher(p domrepo.AlertPublisher) AnalyzeOption {
	return func(uc *AnalyzeUseCase) { uc.publisher = p }
}

func WithMetrics(m domrepo.Metrics) AnalyzeOption {
	return func(uc *AnalyzeUseCase) { uc.metrics = m }
}

func WithHistoryDays(days int) AnalyzeOption {
	return func(uc *AnalyzeUseCase) {
		if days > 0 {
			uc.historyDays = days
		}
	}
}

func WithParams(p analysis.Params, t analysis.Thresholds) AnalyzeOption {
	return func(uc *AnalyzeUseCase) {
		uc.params = p
		uc.thres = t
	}
}

func WithLogger(l *applogger.Logger) AnalyzeOption {
	return func(uc *AnalyzeUseCase) {
		if l != nil {
			uc.l = l
		}
	}
}

func NewAnalyzeUseCase(
	store domrepo.BarStore,
	source domservice.CandleSource,
	detector *analysis.Detector,
	opts ...AnalyzeOption,
) *AnalyzeUseCase {
	uc := &AnalyzeUseCase{
		store:       store,
		source:      source,
		detector:    detector,
		params:      analysis.DefaultParams(),
		thres:       analysis.DefaultThresholds(),
		historyDays: 365,
		l:           applogger.Nop(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Analyze refreshes, analyzes and reports one instrument. Refresh
// errors degrade to stored history; only an empty store is fatal.
func (uc *AnalyzeUseCase) Analyze(ctx context.Context, inst models.Instrument, refresh bool) (report models.InstrumentReport, err error) {
	start := time.Now()
	report.Instrument = inst
	defer func() {
		if uc.metrics != nil {
			uc.metrics.RecordAnalysis(inst.Symbol, err == nil)
			uc.metrics.RecordLatency("analyze", time.Since(start).Seconds())
		}
	}()

	if refresh {
		if rerr := uc.refresh(ctx, inst); rerr != nil {
			uc.l.Warn("refresh failed, using stored history",
				applogger.String("symbol", inst.Symbol),
				applogger.Error(rerr),
			)
			if uc.metrics != nil {
				uc.metrics.RecordError("refresh")
			}
		}
	}

	bars, err := uc.store.GetBars(ctx, inst)
	if err != nil {
		report.Error = err.Error()
		return report, fmt.Errorf("load bars for %s: %w", inst.Key(), err)
	}
	if len(bars) == 0 {
		err = fmt.Errorf("no history for %s", inst.Key())
		report.Error = err.Error()
		return report, err
	}
	report.Bars = len(bars)

	series, err := analysis.Compute(bars, uc.params)
	if err != nil {
		report.Error = err.Error()
		return report, fmt.Errorf("compute indicators for %s: %w", inst.Key(), err)
	}

	sig := analysis.GenerateSignal(series, uc.params, uc.thres)
	report.Signal = &sig

	anomaly, err := uc.detector.Detect(ctx, inst, bars)
	if err != nil {
		report.Error = err.Error()
		return report, fmt.Errorf("detect anomaly for %s: %w", inst.Key(), err)
	}
	report.Anomaly = anomaly

	uc.publish(ctx, inst, &sig, anomaly)

	uc.l.Info("instrument analyzed",
		applogger.String("symbol", inst.Symbol),
		applogger.String("label", string(sig.Label)),
		applogger.Float64("score", sig.Score),
		applogger.Int("bars", len(bars)),
		applogger.Bool("anomaly", anomaly != nil),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return report, nil
}

// refresh pulls candles and upserts them. When history already exists the
// fetch window shrinks to the gap since the last stored date; the store's
// replacing engine deduplicates the overlap.
func (uc *AnalyzeUseCase) refresh(ctx context.Context, inst models.Instrument) error {
	days := uc.historyDays
	if last, ok, err := uc.store.LastDate(ctx, inst); err == nil && ok {
		// +2 covers the partially-stored last session and weekends
		gap := int(time.Since(last).Hours()/24) + 2
		if gap < days {
			days = gap
		}
	}
	bars, err := uc.source.FetchDaily(ctx, inst, days)
	if err != nil {
		return err
	}
	return uc.store.UpsertBars(ctx, inst, bars)
}

func (uc *AnalyzeUseCase) publish(ctx context.Context, inst models.Instrument, sig *models.SignalResult, anomaly *models.AnomalyReport) {
	if anomaly != nil && uc.metrics != nil {
		uc.metrics.RecordAnomaly(inst.Symbol)
	}
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.PublishSignal(ctx, inst, sig); err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordError("publish_signal")
		}
	}
	if anomaly != nil {
		if err := uc.publisher.PublishAnomaly(ctx, anomaly); err != nil {
			if uc.metrics != nil {
				uc.metrics.RecordError("publish_anomaly")
			}
		}
	}
}

// CheckAnomaly runs only the anomaly detector against stored history,
// with an optional threshold override.
func (uc *AnalyzeUseCase) CheckAnomaly(ctx context.Context, inst models.Instrument, threshold float64) (*models.AnomalyReport, error) {
	bars, err := uc.store.GetBars(ctx, inst)
	if err != nil {
		return nil, fmt.Errorf("load bars for %s: %w", inst.Key(), err)
	}
	detector := uc.detector
	if threshold > 0 && threshold != detector.Threshold() {
		detector = detector.WithThresholdOverride(threshold)
	}
	report, err := detector.Detect(ctx, inst, bars)
	if err != nil {
		return nil, err
	}
	if report != nil && uc.metrics != nil {
		uc.metrics.RecordAnomaly(inst.Symbol)
	}
	return report, nil
}
