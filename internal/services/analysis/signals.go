package analysis

import (
	"fmt"

	"StockPulse/internal/domain/models"
)

// GenerateSignal fuses the independent sub-signals of the last two rows
// into one directional score. Each sub-signal votes only when its inputs
// are defined; the score is the arithmetic mean of the votes that were
// actually emitted. It never fails: fewer than two rows yields the
// insufficient-data sentinel.
func GenerateSignal(s models.EnrichedSeries, p Params, t Thresholds) models.SignalResult {
	if len(s) < 2 {
		return models.SignalResult{
			Label:   models.SignalInsufficientData,
			Score:   0,
			Details: []models.IndicatorDetail{},
		}
	}

	row := s[len(s)-1]
	prev := s[len(s)-2]

	var votes []float64
	var details []models.IndicatorDetail
	vote := func(d models.IndicatorDetail) {
		if d.Vote.Valid {
			votes = append(votes, d.Vote.Val)
		}
		details = append(details, d)
	}

	if d, ok := maAlignment(row, p); ok {
		vote(d)
	}
	if d, ok := maCross(row, prev, p); ok {
		vote(d)
	}
	if d, ok := rsiVote(row, t); ok {
		vote(d)
	}
	if d, ok := macdVote(row, prev); ok {
		vote(d)
	}
	if d, ok := adxVote(row, t); ok {
		vote(d)
	}
	if d, ok := bollingerVote(row); ok {
		vote(d)
	}
	if d, ok := momentumVote(models.IndROC, row.ROC, "%"); ok {
		vote(d)
	}
	if d, ok := momentumVote(models.IndMom, row.Mom, ""); ok {
		vote(d)
	}
	if d, ok := obvVote(s); ok {
		vote(d)
	}
	if d, ok := mfiVote(row, t); ok {
		vote(d)
	}
	if row.VROC.Valid {
		details = append(details, models.IndicatorDetail{
			Indicator:   models.IndVROC,
			State:       "info",
			Value:       row.VROC,
			Description: fmt.Sprintf("volume change rate %.1f%%", row.VROC.Val),
		})
	}
	details = append(details, volumeDetails(row, p, t)...)

	score := 0.0
	if len(votes) > 0 {
		for _, v := range votes {
			score += v
		}
		score /= float64(len(votes))
	}

	return models.SignalResult{
		Label:   models.LabelForScore(score),
		Score:   roundN(score, 3),
		Details: details,
		Latest:  buildSnapshot(row, prev),
		Levels:  buildLevels(row, p),
	}
}

// maAlignment averages the sign of close vs each defined moving average.
func maAlignment(row models.EnrichedBar, p Params) (models.IndicatorDetail, bool) {
	sum, n := 0.0, 0
	above := 0
	for _, period := range p.MAPeriods {
		ma, ok := row.MA[period]
		if !ok || !ma.Valid {
			continue
		}
		s := sign(row.Close - ma.Val)
		if s > 0 {
			above++
		}
		sum += s
		n++
	}
	if n == 0 {
		return models.IndicatorDetail{}, false
	}
	score := sum / float64(n)
	return models.IndicatorDetail{
		Indicator:   models.IndMAAlign,
		State:       trendState(score),
		Value:       models.F(score),
		Vote:        models.F(score),
		Description: fmt.Sprintf("close above %d of %d moving averages", above, n),
	}, true
}

// maCross detects a golden/death cross of the configured fast/slow pair
// between the previous and current rows. A vote is emitted only on the
// crossing row itself.
func maCross(row, prev models.EnrichedBar, p Params) (models.IndicatorDetail, bool) {
	d := models.IndicatorDetail{
		Indicator:   models.IndMACross,
		State:       "none",
		Description: fmt.Sprintf("no MA%d/MA%d cross", p.CrossFast, p.CrossSlow),
	}
	fNow, fOK := row.MA[p.CrossFast]
	sNow, sOK := row.MA[p.CrossSlow]
	fPrev, fpOK := prev.MA[p.CrossFast]
	sPrev, spOK := prev.MA[p.CrossSlow]
	if !fOK || !sOK || !fpOK || !spOK ||
		!fNow.Valid || !sNow.Valid || !fPrev.Valid || !sPrev.Valid {
		return d, true
	}
	switch {
	case fPrev.Val <= sPrev.Val && fNow.Val > sNow.Val:
		d.State = "golden_cross"
		d.Vote = models.F(1)
		d.Description = fmt.Sprintf("MA%d crossed above MA%d", p.CrossFast, p.CrossSlow)
	case fPrev.Val >= sPrev.Val && fNow.Val < sNow.Val:
		d.State = "death_cross"
		d.Vote = models.F(-1)
		d.Description = fmt.Sprintf("MA%d crossed below MA%d", p.CrossFast, p.CrossSlow)
	}
	return d, true
}

func rsiVote(row models.EnrichedBar, t Thresholds) (models.IndicatorDetail, bool) {
	if !row.RSI.Valid {
		return models.IndicatorDetail{}, false
	}
	rsi := row.RSI.Val
	d := models.IndicatorDetail{Indicator: models.IndRSI, Value: row.RSI}
	switch {
	case rsi >= t.RSIOverbought:
		d.State = "overbought"
		d.Vote = models.F(-1)
		d.Description = fmt.Sprintf("overbought (%.1f)", rsi)
	case rsi <= t.RSIOversold:
		d.State = "oversold"
		d.Vote = models.F(1)
		d.Description = fmt.Sprintf("oversold (%.1f)", rsi)
	default:
		// midline split: exactly 50 counts as bearish
		d.State = "neutral"
		if rsi > 50 {
			d.Vote = models.F(0.5)
		} else {
			d.Vote = models.F(-0.5)
		}
		d.Description = fmt.Sprintf("neutral (%.1f)", rsi)
	}
	return d, true
}

func macdVote(row, prev models.EnrichedBar) (models.IndicatorDetail, bool) {
	if !row.MACD.Valid || !row.MACDHist.Valid || !prev.MACDHist.Valid {
		return models.IndicatorDetail{}, false
	}
	histNow := row.MACDHist.Val
	histPrev := prev.MACDHist.Val
	d := models.IndicatorDetail{Indicator: models.IndMACD, Value: row.MACDHist}
	switch {
	case histPrev < 0 && histNow >= 0:
		d.State = "bullish_cross"
		d.Vote = models.F(1)
		d.Description = "histogram flipped negative to positive"
	case histPrev > 0 && histNow <= 0:
		d.State = "bearish_cross"
		d.Vote = models.F(-1)
		d.Description = "histogram flipped positive to negative"
	case histNow > 0:
		d.State = "bullish"
		d.Vote = models.F(0.5)
		d.Description = fmt.Sprintf("bullish regime (hist=%.3f)", histNow)
	default:
		d.State = "bearish"
		d.Vote = models.F(-0.5)
		d.Description = fmt.Sprintf("bearish regime (hist=%.3f)", histNow)
	}
	return d, true
}

func adxVote(row models.EnrichedBar, t Thresholds) (models.IndicatorDetail, bool) {
	if !row.ADX.Valid {
		return models.IndicatorDetail{}, false
	}
	adx := row.ADX.Val
	d := models.IndicatorDetail{Indicator: models.IndADX, Value: row.ADX}
	if adx >= t.ADXStrong {
		if row.DIPlus.Valid && row.DIMinus.Valid && row.DIPlus.Val > row.DIMinus.Val {
			d.State = "strong_uptrend"
			d.Vote = models.F(0.8)
			d.Description = fmt.Sprintf("strong uptrend (ADX=%.1f)", adx)
		} else {
			d.State = "strong_downtrend"
			d.Vote = models.F(-0.8)
			d.Description = fmt.Sprintf("strong downtrend (ADX=%.1f)", adx)
		}
	} else {
		d.State = "weak_trend"
		d.Vote = models.F(0)
		d.Description = fmt.Sprintf("weak trend (ADX=%.1f)", adx)
	}
	return d, true
}

func bollingerVote(row models.EnrichedBar) (models.IndicatorDetail, bool) {
	if !row.BollPctB.Valid {
		return models.IndicatorDetail{}, false
	}
	b := row.BollPctB.Val
	d := models.IndicatorDetail{Indicator: models.IndBoll, Value: row.BollPctB}
	switch {
	case b > 1.0:
		d.State = "broke_upper"
		d.Vote = models.F(-1)
		d.Description = "price broke above upper band"
	case b < 0.0:
		d.State = "broke_lower"
		d.Vote = models.F(1)
		d.Description = "price broke below lower band"
	case b > 0.8:
		d.State = "near_upper"
		d.Vote = models.F(-0.5)
		d.Description = fmt.Sprintf("near upper band (%%B=%.2f)", b)
	case b < 0.2:
		d.State = "near_lower"
		d.Vote = models.F(0.5)
		d.Description = fmt.Sprintf("near lower band (%%B=%.2f)", b)
	default:
		d.State = "mid_band"
		d.Vote = models.F(0)
		d.Description = fmt.Sprintf("mid band (%%B=%.2f)", b)
	}
	return d, true
}

// momentumVote covers ROC and Momentum, which share the sign rule.
func momentumVote(kind string, v models.Float, unit string) (models.IndicatorDetail, bool) {
	if !v.Valid {
		return models.IndicatorDetail{}, false
	}
	d := models.IndicatorDetail{Indicator: kind, Value: v}
	switch {
	case v.Val > 0:
		d.State = "positive"
		d.Vote = models.F(0.5)
	case v.Val < 0:
		d.State = "negative"
		d.Vote = models.F(-0.5)
	default:
		d.State = "flat"
		d.Vote = models.F(0)
	}
	d.Description = fmt.Sprintf("%.2f%s %s momentum", v.Val, unit, d.State)
	return d, true
}

// obvVote checks the OBV slope over the last five rows. A flat slope is
// descriptive only; no vote is emitted.
func obvVote(s models.EnrichedSeries) (models.IndicatorDetail, bool) {
	if len(s) < 5 {
		return models.IndicatorDetail{}, false
	}
	now := s[len(s)-1].OBV
	base := s[len(s)-5].OBV
	if !now.Valid || !base.Valid {
		return models.IndicatorDetail{}, false
	}
	slope := now.Val - base.Val
	d := models.IndicatorDetail{Indicator: models.IndOBV, Value: models.F(slope)}
	switch {
	case slope > 0:
		d.State = "rising"
		d.Vote = models.F(0.5)
		d.Description = "volume flow rising (bullish confirmation)"
	case slope < 0:
		d.State = "falling"
		d.Vote = models.F(-0.5)
		d.Description = "volume flow falling (bearish confirmation)"
	default:
		d.State = "flat"
		d.Description = "volume flow flat"
	}
	return d, true
}

func mfiVote(row models.EnrichedBar, t Thresholds) (models.IndicatorDetail, bool) {
	if !row.MFI.Valid {
		return models.IndicatorDetail{}, false
	}
	mfi := row.MFI.Val
	d := models.IndicatorDetail{Indicator: models.IndMFI, Value: row.MFI}
	switch {
	case mfi >= t.MFIOverbought:
		d.State = "overbought_outflow"
		d.Vote = models.F(-0.8)
		d.Description = fmt.Sprintf("overbought, money flowing out (%.1f)", mfi)
	case mfi <= t.MFIOversold:
		d.State = "oversold_inflow"
		d.Vote = models.F(0.8)
		d.Description = fmt.Sprintf("oversold, money flowing in (%.1f)", mfi)
	case mfi > 50:
		d.State = "inflow_bias"
		d.Vote = models.F(0.3)
		d.Description = fmt.Sprintf("money flow leaning bullish (%.1f)", mfi)
	default:
		d.State = "outflow_bias"
		d.Vote = models.F(-0.3)
		d.Description = fmt.Sprintf("money flow leaning bearish (%.1f)", mfi)
	}
	return d, true
}

// volumeDetails describes volume vs each volume MA. Descriptive only.
func volumeDetails(row models.EnrichedBar, p Params, t Thresholds) []models.IndicatorDetail {
	var out []models.IndicatorDetail
	for _, period := range p.VolMAPeriods {
		vma, ok := row.VolMA[period]
		if !ok || !vma.Valid {
			continue
		}
		d := models.IndicatorDetail{
			Indicator: models.IndVolumeMA,
			Period:    period,
			Value:     vma,
		}
		switch {
		case row.Volume > vma.Val*t.HighVolumeRatio:
			d.State = "high"
			d.Description = fmt.Sprintf("high volume (%.1fx MA%d)", row.Volume/vma.Val, period)
		case row.Volume < vma.Val*t.LowVolumeRatio:
			d.State = "low"
			if vma.Val > 0 {
				d.Description = fmt.Sprintf("low volume (%.1fx MA%d)", row.Volume/vma.Val, period)
			} else {
				d.Description = fmt.Sprintf("low volume vs MA%d", period)
			}
		default:
			d.State = "normal"
			d.Description = fmt.Sprintf("normal volume vs MA%d", period)
		}
		out = append(out, d)
	}
	return out
}

func buildSnapshot(row, prev models.EnrichedBar) models.Snapshot {
	snap := models.Snapshot{
		Close:    roundN(row.Close, 3),
		Volume:   row.Volume,
		RSI:      row.RSI.Round(1),
		MACDHist: row.MACDHist.Round(4),
		ADX:      row.ADX.Round(1),
		MFI:      row.MFI.Round(1),
		OBV:      row.OBV.Round(0),
	}
	if prev.Close != 0 {
		snap.ChangePct = models.F(roundN((row.Close/prev.Close-1)*100, 2))
	}
	return snap
}

func buildLevels(row models.EnrichedBar, p Params) models.PriceLevels {
	lv := models.PriceLevels{
		Close:     roundN(row.Close, 3),
		BollUpper: row.BollUpper.Round(3),
		BollLower: row.BollLower.Round(3),
	}
	if ma, ok := row.MA[p.LevelMAShort]; ok {
		lv.MAShort = ma.Round(3)
	}
	if ma, ok := row.MA[p.LevelMALong]; ok {
		lv.MALong = ma.Round(3)
	}
	return lv
}

func trendState(score float64) string {
	switch {
	case score >= 0.6:
		return "strong_bullish"
	case score > 0:
		return "bullish"
	case score == 0:
		return "neutral"
	case score > -0.6:
		return "bearish"
	default:
		return "strong_bearish"
	}
}
