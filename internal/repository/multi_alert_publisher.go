package repository

import (
	"context"
	"errors"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
)

// MultiAlertPublisher fans alerts out to several sinks (Kafka, WebSocket).
// Every sink is attempted; errors are joined so one slow sink does not hide
// another's failure.
type MultiAlertPublisher struct {
	sinks []domrepo.AlertPublisher
}

func NewMultiAlertPublisher(sinks ...domrepo.AlertPublisher) *MultiAlertPublisher {
	out := make([]domrepo.AlertPublisher, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &MultiAlertPublisher{sinks: out}
}

func (m *MultiAlertPublisher) PublishSignal(ctx context.Context, inst models.Instrument, sig *models.SignalResult) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.PublishSignal(ctx, inst, sig); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiAlertPublisher) PublishAnomaly(ctx context.Context, a *models.AnomalyReport) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.PublishAnomaly(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiAlertPublisher) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
