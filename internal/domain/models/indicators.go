package models

// IndicatorRow holds every indicator column for one bar. A column is
// undefined until its warm-up window is satisfied (and whenever a
// denominator degenerates to zero).
type IndicatorRow struct {
	MA map[int]Float `json:"ma"` // simple moving averages keyed by period

	ROC Float `json:"roc"` // rate of change, percent
	Mom Float `json:"mom"` // close[t] - close[t-n]
	RSI Float `json:"rsi"`

	MACD       Float `json:"macd"`
	MACDSignal Float `json:"macd_signal"`
	MACDHist   Float `json:"macd_hist"`

	ADX     Float `json:"adx"`
	DIPlus  Float `json:"di_plus"`
	DIMinus Float `json:"di_minus"`

	BollMid   Float `json:"boll_mid"`
	BollUpper Float `json:"boll_upper"`
	BollLower Float `json:"boll_lower"`
	BollWidth Float `json:"boll_width"`
	BollPctB  Float `json:"boll_pct_b"`

	VolMA map[int]Float `json:"vol_ma"`
	VROC  Float         `json:"vroc"`
	OBV   Float         `json:"obv"`
	MFI   Float         `json:"mfi"`
}

// EnrichedBar is one input bar plus its indicator columns.
type EnrichedBar struct {
	Bar
	IndicatorRow
}

// EnrichedSeries is the output of the indicator pipeline: one row per
// input bar, same date order.
type EnrichedSeries []EnrichedBar
