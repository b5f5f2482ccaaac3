package analysis

import (
	"context"
	"math"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/service"
)

// Detector flags abnormal single-session moves and decorates them with
// news context. The news provider may be nil, in which case reports carry
// an empty news list.
type Detector struct {
	threshold float64
	news      service.NewsProvider
}

type DetectorOption func(*Detector)

// WithThreshold overrides the absolute fractional move that flags an
// anomaly. Non-positive values fall back to the default.
func WithThreshold(th float64) DetectorOption {
	return func(d *Detector) {
		if th > 0 {
			d.threshold = th
		}
	}
}

func WithNewsProvider(np service.NewsProvider) DetectorOption {
	return func(d *Detector) {
		d.news = np
	}
}

func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{threshold: DefaultAnomalyThreshold}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect inspects the latest bar against the one before it. A nil report
// with a nil error means no anomaly: too few bars, a zero previous close,
// or a move inside the threshold.
func (d *Detector) Detect(ctx context.Context, inst models.Instrument, bars []models.Bar) (*models.AnomalyReport, error) {
	if len(bars) < 2 {
		return nil, nil
	}
	last := bars[len(bars)-1]
	prev := bars[len(bars)-2]
	if prev.Close == 0 {
		return nil, nil
	}

	change := last.Close/prev.Close - 1
	if math.Abs(change) < d.threshold {
		return nil, nil
	}

	dir := models.AnomalySurge
	if change < 0 {
		dir = models.AnomalyPlunge
	}

	report := &models.AnomalyReport{
		Symbol:    inst.Symbol,
		Name:      inst.Name,
		Market:    inst.Market,
		Date:      last.Date.Format("2006-01-02"),
		Close:     roundN(last.Close, 3),
		PrevClose: roundN(prev.Close, 3),
		ChangePct: roundN(change*100, 2),
		Direction: dir,
		News:      []models.NewsItem{},
	}
	if d.news != nil {
		report.News = d.news.Lookup(ctx, inst, last.Date)
	}
	return report, nil
}

// Threshold reports the configured cutoff, for logging and handlers.
func (d *Detector) Threshold() float64 { return d.threshold }

// WithThresholdOverride returns a copy with a different cutoff, keeping
// the same news provider.
func (d *Detector) WithThresholdOverride(th float64) *Detector {
	return NewDetector(WithThreshold(th), WithNewsProvider(d.news))
}
