// Package analysis implements the indicator pipeline, the signal fusion
// engine and the anomaly detector. Everything here is a pure function of
// its inputs: the enriched series is recomputed from the full history on
// every call, so no indicator state survives between runs.
package analysis

import (
	"fmt"
	"math"

	"StockPulse/internal/domain/models"
)

// Compute derives every indicator column for the given bar series.
// The result has exactly one row per input bar, in the same date order.
// It fails only on a precondition violation (non-monotonic or duplicate
// dates); short series simply yield undefined columns.
func Compute(bars []models.Bar, p Params) (models.EnrichedSeries, error) {
	if err := validateSeries(bars); err != nil {
		return nil, err
	}

	n := len(bars)
	out := make(models.EnrichedSeries, n)
	for i := range bars {
		out[i].Bar = bars[i]
		out[i].MA = make(map[int]models.Float, len(p.MAPeriods))
		out[i].VolMA = make(map[int]models.Float, len(p.VolMAPeriods))
	}
	if n == 0 {
		return out, nil
	}

	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	vols := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
		vols[i] = b.Volume
	}

	for _, period := range p.MAPeriods {
		ma := rollingMean(closes, period)
		for i := range out {
			out[i].MA[period] = ma[i]
		}
	}

	roc := pctChange(closes, p.ROCPeriod)
	mom := diffN(closes, p.MomPeriod)
	rsi := computeRSI(closes, p.RSIPeriod)
	macd, macdSig, macdHist := computeMACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	adx, diPlus, diMinus := computeADX(highs, lows, closes, p.ADXPeriod)
	bollMid, bollUp, bollLo, bollW, bollB := computeBollinger(closes, p.BollPeriod, p.BollStd)

	for _, period := range p.VolMAPeriods {
		vma := rollingMean(vols, period)
		for i := range out {
			out[i].VolMA[period] = vma[i]
		}
	}
	vroc := pctChange(vols, p.VROCPeriod)
	obv := computeOBV(closes, vols)
	mfi := computeMFI(highs, lows, closes, vols, p.MFIPeriod)

	for i := range out {
		out[i].ROC = roc[i]
		out[i].Mom = mom[i]
		out[i].RSI = rsi[i]
		out[i].MACD = macd[i]
		out[i].MACDSignal = macdSig[i]
		out[i].MACDHist = macdHist[i]
		out[i].ADX = adx[i]
		out[i].DIPlus = diPlus[i]
		out[i].DIMinus = diMinus[i]
		out[i].BollMid = bollMid[i]
		out[i].BollUpper = bollUp[i]
		out[i].BollLower = bollLo[i]
		out[i].BollWidth = bollW[i]
		out[i].BollPctB = bollB[i]
		out[i].VROC = vroc[i]
		out[i].OBV = obv[i]
		out[i].MFI = mfi[i]
	}
	return out, nil
}

// validateSeries enforces the upstream contract: unique, ascending dates.
func validateSeries(bars []models.Bar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return fmt.Errorf("bar series precondition: dates must be strictly ascending, got %s after %s at row %d",
				bars[i].Date.Format("2006-01-02"), bars[i-1].Date.Format("2006-01-02"), i)
		}
	}
	return nil
}

// computeRSI applies Wilder smoothing to day-over-day gains and losses.
// RSI is undefined during warm-up and whenever the average loss is zero.
func computeRSI(closes []float64, period int) []models.Float {
	n := len(closes)
	gains := make([]models.Float, n)
	losses := make([]models.Float, n)
	for i := 1; i < n; i++ {
		d := closes[i] - closes[i-1]
		gains[i] = models.F(math.Max(d, 0))
		losses[i] = models.F(math.Max(-d, 0))
	}
	avgGain := wilderEWM(gains, period)
	avgLoss := wilderEWM(losses, period)

	out := make([]models.Float, n)
	for i := 0; i < n; i++ {
		if !avgGain[i].Valid || !avgLoss[i].Valid || avgLoss[i].Val == 0 {
			continue
		}
		rs := avgGain[i].Val / avgLoss[i].Val
		out[i] = models.F(100 - 100/(1+rs))
	}
	return out
}

func computeMACD(closes []float64, fast, slow, signal int) (macd, sig, hist []models.Float) {
	n := len(closes)
	wrapped := make([]models.Float, n)
	for i, c := range closes {
		wrapped[i] = models.F(c)
	}
	emaFast := emaSpan(wrapped, fast)
	emaSlow := emaSpan(wrapped, slow)

	macd = make([]models.Float, n)
	for i := 0; i < n; i++ {
		if emaFast[i].Valid && emaSlow[i].Valid {
			macd[i] = models.F(emaFast[i].Val - emaSlow[i].Val)
		}
	}
	sig = emaSpan(macd, signal)
	hist = make([]models.Float, n)
	for i := 0; i < n; i++ {
		if macd[i].Valid && sig[i].Valid {
			hist[i] = models.F(macd[i].Val - sig[i].Val)
		}
	}
	return macd, sig, hist
}

// computeADX derives DI+/DI-, DX and ADX from smoothed true range and
// directional movement.
//
// The ±DM mutual exclusion is kept bit-for-bit with the reference: +DM is
// zeroed against the current bar's raw -DM, while -DM is zeroed against the
// previous bar's already-zeroed +DM. The asymmetry is intentional parity,
// not an oversight here.
func computeADX(highs, lows, closes []float64, period int) (adx, diPlus, diMinus []models.Float) {
	n := len(highs)
	tr := make([]models.Float, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	for i := 0; i < n; i++ {
		r := highs[i] - lows[i]
		if i > 0 {
			r = math.Max(r, math.Abs(highs[i]-closes[i-1]))
			r = math.Max(r, math.Abs(lows[i]-closes[i-1]))
		}
		tr[i] = models.F(r)

		var plusRaw, minusRaw float64
		if i > 0 {
			plusRaw = math.Max(highs[i]-highs[i-1], 0)
			minusRaw = math.Max(lows[i-1]-lows[i], 0)
		}
		if plusRaw > minusRaw {
			plusDM[i] = plusRaw
		}
		prevPlus := 0.0
		if i > 0 {
			prevPlus = plusDM[i-1]
		}
		if minusRaw > prevPlus {
			minusDM[i] = minusRaw
		}
	}

	wrap := func(xs []float64) []models.Float {
		ws := make([]models.Float, len(xs))
		for i, x := range xs {
			ws[i] = models.F(x)
		}
		return ws
	}
	atr := emaSpan(tr, period)
	smPlus := emaSpan(wrap(plusDM), period)
	smMinus := emaSpan(wrap(minusDM), period)

	diPlus = make([]models.Float, n)
	diMinus = make([]models.Float, n)
	dx := make([]models.Float, n)
	for i := 0; i < n; i++ {
		if !atr[i].Valid || atr[i].Val == 0 {
			continue
		}
		if smPlus[i].Valid {
			diPlus[i] = models.F(100 * smPlus[i].Val / atr[i].Val)
		}
		if smMinus[i].Valid {
			diMinus[i] = models.F(100 * smMinus[i].Val / atr[i].Val)
		}
		if diPlus[i].Valid && diMinus[i].Valid {
			den := diPlus[i].Val + diMinus[i].Val
			if den != 0 {
				dx[i] = models.F(100 * math.Abs(diPlus[i].Val-diMinus[i].Val) / den)
			}
		}
	}
	adx = emaSpan(dx, period)
	return adx, diPlus, diMinus
}

func computeBollinger(closes []float64, period int, k float64) (mid, upper, lower, width, pctB []models.Float) {
	n := len(closes)
	mid = rollingMean(closes, period)
	band := rollingStd(closes, period)

	upper = make([]models.Float, n)
	lower = make([]models.Float, n)
	width = make([]models.Float, n)
	pctB = make([]models.Float, n)
	for i := 0; i < n; i++ {
		if !mid[i].Valid || !band[i].Valid {
			continue
		}
		u := mid[i].Val + k*band[i].Val
		l := mid[i].Val - k*band[i].Val
		upper[i] = models.F(u)
		lower[i] = models.F(l)
		if mid[i].Val != 0 {
			width[i] = models.F((u - l) / mid[i].Val)
		}
		if u != l {
			pctB[i] = models.F((closes[i] - l) / (u - l))
		}
	}
	return mid, upper, lower, width, pctB
}

// computeOBV is the cumulative signed-volume sum; the first row's diff is
// treated as zero, so OBV is defined from row 0.
func computeOBV(closes, vols []float64) []models.Float {
	out := make([]models.Float, len(closes))
	acc := 0.0
	for i := range closes {
		if i > 0 {
			acc += sign(closes[i]-closes[i-1]) * vols[i]
		}
		out[i] = models.F(acc)
	}
	return out
}

// computeMFI buckets typical-price money flow by direction and takes the
// rolling ratio. Undefined while warming up and when the negative sum is 0.
func computeMFI(highs, lows, closes, vols []float64, period int) []models.Float {
	n := len(highs)
	pos := make([]float64, n)
	neg := make([]float64, n)
	prevTypical := 0.0
	for i := 0; i < n; i++ {
		typical := (highs[i] + lows[i] + closes[i]) / 3
		raw := typical * vols[i]
		if i > 0 {
			if typical > prevTypical {
				pos[i] = raw
			} else if typical < prevTypical {
				neg[i] = raw
			}
		}
		prevTypical = typical
	}
	posSum := rollingSum(pos, period)
	negSum := rollingSum(neg, period)

	out := make([]models.Float, n)
	for i := 0; i < n; i++ {
		if !posSum[i].Valid || !negSum[i].Valid || negSum[i].Val == 0 {
			continue
		}
		ratio := posSum[i].Val / negSum[i].Val
		out[i] = models.F(100 - 100/(1+ratio))
	}
	return out
}
