package analysis

import (
	"math"

	"StockPulse/internal/domain/models"
)

// Rolling and exponential kernels. Semantics match the reference exactly:
// a window is undefined until fully populated, exponential means carry the
// previous smoothed value across undefined inputs, and every zero
// denominator resolves to undefined rather than ±Inf.

func rollingMean(xs []float64, w int) []models.Float {
	out := make([]models.Float, len(xs))
	if w <= 0 {
		return out
	}
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= w {
			sum -= xs[i-w]
		}
		if i >= w-1 {
			out[i] = models.F(sum / float64(w))
		}
	}
	return out
}

func rollingSum(xs []float64, w int) []models.Float {
	out := make([]models.Float, len(xs))
	if w <= 0 {
		return out
	}
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= w {
			sum -= xs[i-w]
		}
		if i >= w-1 {
			out[i] = models.F(sum)
		}
	}
	return out
}

// rollingStd is the sample standard deviation (ddof=1) over a full window.
func rollingStd(xs []float64, w int) []models.Float {
	out := make([]models.Float, len(xs))
	if w < 2 {
		return out
	}
	for i := w - 1; i < len(xs); i++ {
		mean := 0.0
		for j := i - w + 1; j <= i; j++ {
			mean += xs[j]
		}
		mean /= float64(w)
		ss := 0.0
		for j := i - w + 1; j <= i; j++ {
			d := xs[j] - mean
			ss += d * d
		}
		v := ss / float64(w-1)
		if v < 0 {
			v = 0
		}
		out[i] = models.F(math.Sqrt(v))
	}
	return out
}

// pctChange is the percent change over n rows, x100. Undefined during
// warm-up and when the base value is zero.
func pctChange(xs []float64, n int) []models.Float {
	out := make([]models.Float, len(xs))
	if n <= 0 {
		return out
	}
	for i := n; i < len(xs); i++ {
		base := xs[i-n]
		if base == 0 {
			continue
		}
		out[i] = models.F((xs[i] - base) / base * 100)
	}
	return out
}

// diffN is x[t] - x[t-n]; undefined during warm-up.
func diffN(xs []float64, n int) []models.Float {
	out := make([]models.Float, len(xs))
	if n <= 0 {
		return out
	}
	for i := n; i < len(xs); i++ {
		out[i] = models.F(xs[i] - xs[i-n])
	}
	return out
}

// emaSpan is the span-parameterized EMA seeded on the first defined input
// (recursive form, alpha = 2/(span+1)). Undefined inputs carry the previous
// smoothed value forward; the output is undefined until the series is seeded.
func emaSpan(xs []models.Float, span int) []models.Float {
	out := make([]models.Float, len(xs))
	if span <= 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	var prev float64
	seeded := false
	for i, x := range xs {
		if x.Valid {
			if seeded {
				prev = alpha*x.Val + (1-alpha)*prev
			} else {
				prev = x.Val
				seeded = true
			}
		}
		if seeded {
			out[i] = models.F(prev)
		}
	}
	return out
}

// wilderEWM is the Wilder-style exponential mean: center-of-mass =
// period-1 (alpha = 1/period), position-weighted form, undefined until
// `period` defined observations have been seen. Undefined inputs decay both
// the numerator and denominator, leaving the mean unchanged.
func wilderEWM(xs []models.Float, period int) []models.Float {
	out := make([]models.Float, len(xs))
	if period <= 0 {
		return out
	}
	decay := 1.0 - 1.0/float64(period)
	var num, den float64
	seen := 0
	started := false
	for i, x := range xs {
		if x.Valid {
			if started {
				num = x.Val + decay*num
				den = 1 + decay*den
			} else {
				num, den = x.Val, 1
				started = true
			}
			seen++
		} else if started {
			num *= decay
			den *= decay
		}
		if started && seen >= period && den != 0 {
			out[i] = models.F(num / den)
		}
	}
	return out
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func roundN(v float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(v*p) / p
}
