package analysis

// Params holds every indicator period/span. It is injected per run;
// nothing in this package reads process-wide configuration.
type Params struct {
	MAPeriods []int

	RSIPeriod int

	MACDFast   int
	MACDSlow   int
	MACDSignal int

	BollPeriod int
	BollStd    float64

	ADXPeriod int
	ROCPeriod int
	MomPeriod int

	VolMAPeriods []int
	VROCPeriod   int
	MFIPeriod    int

	// Moving-average pair checked for golden/death crosses.
	CrossFast int
	CrossSlow int

	// Moving averages reported as downstream price levels.
	LevelMAShort int
	LevelMALong  int
}

// Thresholds holds the signal-engine cutoffs.
type Thresholds struct {
	RSIOverbought float64
	RSIOversold   float64
	ADXStrong     float64
	MFIOverbought float64
	MFIOversold   float64

	// Volume relative to its moving average: above High is "high volume",
	// below Low is "low volume".
	HighVolumeRatio float64
	LowVolumeRatio  float64
}

// DefaultAnomalyThreshold is the single-session move that flags an anomaly.
const DefaultAnomalyThreshold = 0.05

// DefaultParams mirrors the reference parameter set.
func DefaultParams() Params {
	return Params{
		MAPeriods:    []int{5, 10, 20, 60},
		RSIPeriod:    14,
		MACDFast:     12,
		MACDSlow:     26,
		MACDSignal:   9,
		BollPeriod:   20,
		BollStd:      2,
		ADXPeriod:    14,
		ROCPeriod:    12,
		MomPeriod:    10,
		VolMAPeriods: []int{5, 10, 20},
		VROCPeriod:   12,
		MFIPeriod:    14,
		CrossFast:    5,
		CrossSlow:    20,
		LevelMAShort: 20,
		LevelMALong:  60,
	}
}

// DefaultThresholds mirrors the reference signal cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RSIOverbought:   70,
		RSIOversold:     30,
		ADXStrong:       25,
		MFIOverbought:   80,
		MFIOversold:     20,
		HighVolumeRatio: 1.5,
		LowVolumeRatio:  0.5,
	}
}
