package analysis

import (
	"testing"

	"StockPulse/internal/domain/models"
)

func findDetail(ds []models.IndicatorDetail, kind string) (models.IndicatorDetail, bool) {
	for _, d := range ds {
		if d.Indicator == kind {
			return d, true
		}
	}
	return models.IndicatorDetail{}, false
}

func TestGenerateSignalInsufficientData(t *testing.T) {
	for _, n := range []int{0, 1} {
		s := make(models.EnrichedSeries, n)
		got := GenerateSignal(s, DefaultParams(), DefaultThresholds())
		if got.Label != models.SignalInsufficientData {
			t.Fatalf("n=%d: label = %q", n, got.Label)
		}
		if got.Score != 0 {
			t.Fatalf("n=%d: score = %v", n, got.Score)
		}
	}
}

func TestRSIVoteLevels(t *testing.T) {
	cases := []struct {
		rsi   float64
		vote  float64
		label models.SignalLabel
	}{
		{75, -1, models.SignalStrongSell},
		{25, 1, models.SignalStrongBuy},
		{55, 0.5, models.SignalBuy},
		{50, -0.5, models.SignalSell}, // midline counts as bearish
		{45, -0.5, models.SignalSell},
	}
	for _, c := range cases {
		s := make(models.EnrichedSeries, 2)
		s[1].RSI = models.F(c.rsi)
		got := GenerateSignal(s, DefaultParams(), DefaultThresholds())
		d, ok := findDetail(got.Details, models.IndRSI)
		if !ok {
			t.Fatalf("rsi=%v: no detail emitted", c.rsi)
		}
		if !d.Vote.Valid || d.Vote.Val != c.vote {
			t.Fatalf("rsi=%v: vote = %+v, want %v", c.rsi, d.Vote, c.vote)
		}
		if got.Label != c.label {
			t.Fatalf("rsi=%v: label = %q, want %q", c.rsi, got.Label, c.label)
		}
	}
}

func TestGoldenCrossVote(t *testing.T) {
	p := DefaultParams()
	s := make(models.EnrichedSeries, 2)
	s[0].MA = map[int]models.Float{p.CrossFast: models.F(99), p.CrossSlow: models.F(100)}
	s[1].MA = map[int]models.Float{p.CrossFast: models.F(101), p.CrossSlow: models.F(100)}
	s[1].Close = 100.5

	got := GenerateSignal(s, p, DefaultThresholds())
	d, ok := findDetail(got.Details, models.IndMACross)
	if !ok {
		t.Fatalf("no cross detail emitted")
	}
	if d.State != "golden_cross" || !d.Vote.Valid || d.Vote.Val != 1 {
		t.Fatalf("cross detail = %+v", d)
	}
	// alignment votes 0 (above one MA, below the other), cross votes +1
	if got.Score != 0.5 {
		t.Fatalf("score = %v, want 0.5", got.Score)
	}
}

func TestDeathCrossVote(t *testing.T) {
	p := DefaultParams()
	s := make(models.EnrichedSeries, 2)
	s[0].MA = map[int]models.Float{p.CrossFast: models.F(101), p.CrossSlow: models.F(100)}
	s[1].MA = map[int]models.Float{p.CrossFast: models.F(99), p.CrossSlow: models.F(100)}
	s[1].Close = 99.5

	got := GenerateSignal(s, p, DefaultThresholds())
	d, ok := findDetail(got.Details, models.IndMACross)
	if !ok {
		t.Fatalf("no cross detail emitted")
	}
	if d.State != "death_cross" || !d.Vote.Valid || d.Vote.Val != -1 {
		t.Fatalf("cross detail = %+v", d)
	}
}

func TestNoCrossEmitsDetailWithoutVote(t *testing.T) {
	p := DefaultParams()
	s := make(models.EnrichedSeries, 2)
	s[0].MA = map[int]models.Float{p.CrossFast: models.F(101), p.CrossSlow: models.F(100)}
	s[1].MA = map[int]models.Float{p.CrossFast: models.F(102), p.CrossSlow: models.F(100)}
	s[1].Close = 103

	got := GenerateSignal(s, p, DefaultThresholds())
	d, ok := findDetail(got.Details, models.IndMACross)
	if !ok {
		t.Fatalf("no cross detail emitted")
	}
	if d.State != "none" || d.Vote.Valid {
		t.Fatalf("cross detail = %+v, want stateless none without vote", d)
	}
}

func TestOpposingVotesYieldHold(t *testing.T) {
	s := make(models.EnrichedSeries, 2)
	s[1].RSI = models.F(75)      // -1
	s[1].BollPctB = models.F(-1) // broke lower band, +1
	got := GenerateSignal(s, DefaultParams(), DefaultThresholds())
	if got.Score != 0 {
		t.Fatalf("score = %v, want 0", got.Score)
	}
	if got.Label != models.SignalHold {
		t.Fatalf("label = %q, want hold", got.Label)
	}
}

func TestADXWeakTrendVoteIsCountedZero(t *testing.T) {
	s := make(models.EnrichedSeries, 2)
	s[1].ADX = models.F(15)
	got := GenerateSignal(s, DefaultParams(), DefaultThresholds())
	d, ok := findDetail(got.Details, models.IndADX)
	if !ok {
		t.Fatalf("no ADX detail emitted")
	}
	if !d.Vote.Valid || d.Vote.Val != 0 {
		t.Fatalf("weak-trend vote = %+v, want a real 0", d.Vote)
	}
	if got.Label != models.SignalHold {
		t.Fatalf("label = %q, want hold", got.Label)
	}
}

func TestADXStrongTrendWithUndefinedDIsIsBearish(t *testing.T) {
	s := make(models.EnrichedSeries, 2)
	s[1].ADX = models.F(40)
	got := GenerateSignal(s, DefaultParams(), DefaultThresholds())
	d, _ := findDetail(got.Details, models.IndADX)
	if d.State != "strong_downtrend" || d.Vote.Val != -0.8 {
		t.Fatalf("ADX detail = %+v, want strong_downtrend -0.8", d)
	}
}

func TestOBVSlopeNeedsFiveRows(t *testing.T) {
	s := make(models.EnrichedSeries, 4)
	for i := range s {
		s[i].OBV = models.F(float64(i * 100))
	}
	got := GenerateSignal(s, DefaultParams(), DefaultThresholds())
	if _, ok := findDetail(got.Details, models.IndOBV); ok {
		t.Fatalf("OBV detail emitted with only 4 rows")
	}

	s = make(models.EnrichedSeries, 5)
	for i := range s {
		s[i].OBV = models.F(float64(i * 100))
	}
	got = GenerateSignal(s, DefaultParams(), DefaultThresholds())
	d, ok := findDetail(got.Details, models.IndOBV)
	if !ok {
		t.Fatalf("no OBV detail with 5 rows")
	}
	if d.State != "rising" || d.Vote.Val != 0.5 {
		t.Fatalf("OBV detail = %+v", d)
	}
}

func TestOBVFlatSlopeEmitsNoVote(t *testing.T) {
	s := make(models.EnrichedSeries, 5)
	for i := range s {
		s[i].OBV = models.F(500)
	}
	got := GenerateSignal(s, DefaultParams(), DefaultThresholds())
	d, ok := findDetail(got.Details, models.IndOBV)
	if !ok {
		t.Fatalf("flat OBV must still be described")
	}
	if d.Vote.Valid {
		t.Fatalf("flat OBV must not vote, got %+v", d.Vote)
	}
	if got.Label != models.SignalHold {
		t.Fatalf("label = %q, want hold with no votes", got.Label)
	}
}

func TestLabelThresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  models.SignalLabel
	}{
		{0.6, models.SignalStrongBuy},
		{0.59, models.SignalBuy},
		{0.2, models.SignalBuy},
		{0.19, models.SignalHold},
		{-0.19, models.SignalHold},
		{-0.2, models.SignalSell},
		{-0.59, models.SignalSell},
		{-0.6, models.SignalStrongSell},
	}
	for _, c := range cases {
		if got := models.LabelForScore(c.score); got != c.want {
			t.Fatalf("score %v: label = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestSnapshotRoundingAndChangeGuard(t *testing.T) {
	s := make(models.EnrichedSeries, 2)
	s[0].Close = 0
	s[1].Close = 123.45678
	s[1].Volume = 9999
	s[1].RSI = models.F(55.5555)
	got := GenerateSignal(s, DefaultParams(), DefaultThresholds())
	if got.Latest.ChangePct.Valid {
		t.Fatalf("change must be undefined over a zero previous close")
	}
	if got.Latest.Close != 123.457 {
		t.Fatalf("close = %v, want 123.457", got.Latest.Close)
	}
	if got.Latest.RSI.Val != 55.6 {
		t.Fatalf("rsi = %v, want 55.6", got.Latest.RSI.Val)
	}

	s[0].Close = 100
	got = GenerateSignal(s, DefaultParams(), DefaultThresholds())
	if !got.Latest.ChangePct.Valid || got.Latest.ChangePct.Val != 23.46 {
		t.Fatalf("change = %+v, want 23.46", got.Latest.ChangePct)
	}
}

func TestRisingSeriesIsBullish(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + 2*float64(i)
	}
	series, err := Compute(mkBars(closes), DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	got := GenerateSignal(series, DefaultParams(), DefaultThresholds())
	if got.Score <= 0 {
		t.Fatalf("score = %v, want > 0 on a steadily rising series", got.Score)
	}
	if got.Label != models.SignalBuy && got.Label != models.SignalStrongBuy {
		t.Fatalf("label = %q, want a bullish label", got.Label)
	}
	if len(got.Details) == 0 {
		t.Fatalf("no details emitted")
	}
}
