package models

// Requests for the analysis HTTP endpoints. Defined in domain for
// consistency and reuse.

type SignalRequest struct {
	Symbol  string `query:"symbol" json:"symbol" validate:"required"`
	Market  string `query:"market" json:"market" default:"US" validate:"oneof=A US HK"`
	Name    string `query:"name" json:"name"`
	Refresh bool   `query:"refresh" json:"refresh"`
}

type AnomalyCheckRequest struct {
	Symbol    string  `query:"symbol" json:"symbol" validate:"required"`
	Market    string  `query:"market" json:"market" default:"US" validate:"oneof=A US HK"`
	Name      string  `query:"name" json:"name"`
	Threshold float64 `query:"threshold" json:"threshold" default:"0.05" validate:"gt=0,lte=1"`
}

type RunRequest struct {
	// Symbols restricts the run to a subset of the watchlist; empty = all.
	Symbols []string `query:"symbols" json:"symbols"`
}
