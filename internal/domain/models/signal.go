package models

// SignalLabel is the categorical trading signal derived from the fused score.
type SignalLabel string

const (
	SignalStrongBuy        SignalLabel = "strong_buy"
	SignalBuy              SignalLabel = "buy"
	SignalHold             SignalLabel = "hold"
	SignalSell             SignalLabel = "sell"
	SignalStrongSell       SignalLabel = "strong_sell"
	SignalInsufficientData SignalLabel = "insufficient_data"
)

// Indicator kinds used in detail records.
const (
	IndMAAlign  = "ma_alignment"
	IndMACross  = "ma_cross"
	IndRSI      = "rsi"
	IndMACD     = "macd"
	IndADX      = "adx"
	IndBoll     = "bollinger"
	IndROC      = "roc"
	IndMom      = "momentum"
	IndOBV      = "obv"
	IndMFI      = "mfi"
	IndVROC     = "vroc"
	IndVolumeMA = "volume_ma"
)

// IndicatorDetail is a tagged record describing one sub-signal's state.
// Vote is undefined when the sub-signal emitted no vote (precondition not
// met, or descriptive-only); a zero-valued vote is a real vote.
type IndicatorDetail struct {
	Indicator   string `json:"indicator"`
	Period      int    `json:"period,omitempty"` // for per-period details (volume MAs)
	State       string `json:"state"`
	Value       Float  `json:"value"`
	Vote        Float  `json:"vote"`
	Description string `json:"description"`
}

// Snapshot carries the key metrics of the latest bar for advisory rendering.
type Snapshot struct {
	Close     float64 `json:"close"`
	ChangePct Float   `json:"change_pct"`
	Volume    float64 `json:"volume"`
	RSI       Float   `json:"rsi"`
	MACDHist  Float   `json:"macd_hist"`
	ADX       Float   `json:"adx"`
	MFI       Float   `json:"mfi"`
	OBV       Float   `json:"obv"`
}

// PriceLevels are reference prices consumed by downstream advisory text.
type PriceLevels struct {
	Close     float64 `json:"close"`
	BollUpper Float   `json:"boll_upper"`
	BollLower Float   `json:"boll_lower"`
	MAShort   Float   `json:"ma_short"`
	MALong    Float   `json:"ma_long"`
}

// SignalResult is the fused output of the signal engine.
type SignalResult struct {
	Label   SignalLabel       `json:"label"`
	Score   float64           `json:"score"` // mean of emitted votes, in [-1, 1]
	Details []IndicatorDetail `json:"details"`
	Latest  Snapshot          `json:"latest"`
	Levels  PriceLevels       `json:"price_levels"`
}

// LabelForScore maps a fused score onto the fixed ordinal label scale.
func LabelForScore(score float64) SignalLabel {
	switch {
	case score >= 0.6:
		return SignalStrongBuy
	case score >= 0.2:
		return SignalBuy
	case score > -0.2:
		return SignalHold
	case score > -0.6:
		return SignalSell
	default:
		return SignalStrongSell
	}
}
