package models

import "time"

// InstrumentReport is the outcome of analyzing one watchlist instrument.
// Error is set instead of Signal/Anomaly when the instrument failed; a
// single failure never aborts the batch.
type InstrumentReport struct {
	Instrument Instrument     `json:"instrument"`
	Signal     *SignalResult  `json:"signal,omitempty"`
	Anomaly    *AnomalyReport `json:"anomaly,omitempty"`
	Bars       int            `json:"bars"`
	Error      string         `json:"error,omitempty"`
}

// BatchReport aggregates one watchlist run.
type BatchReport struct {
	StartedAt time.Time          `json:"started_at"`
	Duration  time.Duration      `json:"duration_ms"`
	Reports   []InstrumentReport `json:"reports"`
	Failed    int                `json:"failed"`
}
